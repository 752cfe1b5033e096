package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gramjyoti/microgrid-core/internal/i18n"
)

type languageInfo struct {
	Code    i18n.Language `json:"code"`
	Name    string        `json:"name"`
	Default bool          `json:"default,omitempty"`
}

func (s *Server) handleListLanguages(w http.ResponseWriter, _ *http.Request) {
	langs := i18n.AllLanguages()
	out := make([]languageInfo, 0, len(langs))
	for _, l := range langs {
		out = append(out, languageInfo{Code: l, Name: l.Name(), Default: l == i18n.DefaultLanguage})
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": out})
}

// handleTranslations returns the full key table for one language so the
// dashboard can render without further lookups.
func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	lang, err := i18n.ParseLanguage(chi.URLParam(r, "lang"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language":     lang,
		"translations": i18n.Table(lang),
	})
}
