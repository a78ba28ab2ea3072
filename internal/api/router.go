package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(logger *slog.Logger, scanner Scanner) *mux.Router {
	router := mux.NewRouter()
	apiHandler := NewAPIHandler(logger, scanner)

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware)

	router.HandleFunc("/ping", apiHandler.PingHandler).Methods(http.MethodGet, http.MethodOptions)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/check-links", apiHandler.CheckLinksHandler).Methods(http.MethodPost, http.MethodOptions)

	return router
}
