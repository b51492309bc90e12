package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/parkpulse/nps-backend/internal/catalog"
	"github.com/parkpulse/nps-backend/internal/db"
	"github.com/parkpulse/nps-backend/internal/middleware"
	"github.com/parkpulse/nps-backend/internal/visits"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "NPS visitor analytics API is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	catalog.Init()
	visits.Init()

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	catalog.RegisterRoutes(r)
	visits.RegisterRoutes(r)

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
