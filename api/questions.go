package api

import (
	"net/http"

	"github.com/garnizeh/assessboard/internal/assessment"
)

// QuestionsHandler serves the static questionnaire catalog.
func QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assessment.NewCatalog())
}
