package main

import (
	"log"
	"net/http"
	"os"

	"speedwurdz/dictionary"
	"speedwurdz/internal/gateway"
	"speedwurdz/internal/ledger"
	"speedwurdz/internal/lobby"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Server] No .env file loaded: %v", err)
	}

	dict := dictionary.NewFromEnv()
	if err := dict.Load(); err != nil {
		log.Fatalf("[Server] Failed to load dictionary: %v", err)
	}
	log.Printf("[Server] Dictionary loaded: %d words", dict.WordCount())

	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	lby := lobby.New(dict, ledgerService)
	gw := gateway.New(lby)
	ledgerHTTP := ledger.NewHTTPHandler(ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	ledgerHTTP.RegisterRoutes(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	addr := ":" + port

	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] SpeedWurdz server running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
