package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer()
	defer srv.Log.Sync()

	r := srv.SetupRouter()

	srv.Log.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
