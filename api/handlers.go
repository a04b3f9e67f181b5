package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/categorize"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/reply"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := email.Filter{
		AccountID: query.Get("account"),
		Folder:    query.Get("folder"),
		Category:  query.Get("category"),
		Query:     query.Get("q"),
	}
	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, codeInvalidJSON, "limit must be a positive number")
			return
		}
		filter.Limit = limit
	}

	documents, err := s.config.Sink.Search(filter)
	if err != nil {
		s.log.Printf("search failed: %s", err)
		respondError(w, http.StatusInternalServerError, codeStorageError, "cannot search the index")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"messages": documents,
		"total":    len(documents),
	})
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	request := categoryRequest{}
	if err := decodeJSON(r, &request); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")
		return
	}
	if !categorize.Valid(request.Category) {
		respondError(w, http.StatusUnprocessableEntity, codeInvalidCategory, "unknown category "+strconv.Quote(request.Category))
		return
	}
	if err := s.updateCategory(w, id, request.Category); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":       id,
		"category": request.Category,
	})
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, found := s.findDocument(w, id)
	if !found {
		return
	}
	suggestion := categorize.Suggest(doc)
	if err := s.updateCategory(w, id, suggestion); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":       id,
		"category": suggestion,
	})
}

func (s *Server) handleSuggestReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, found := s.findDocument(w, id)
	if !found {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":    id,
		"reply": reply.Suggest(doc),
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := make(map[string]string)
	if s.config.Engine != nil {
		for id, state := range s.config.Engine.States() {
			accounts[id] = state.String()
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// findDocument loads one document by id, answering 404 itself when the
// document doesn't exist.
func (s *Server) findDocument(w http.ResponseWriter, id string) (email.Document, bool) {
	documents, err := s.config.Sink.Search(email.Filter{IDs: []string{id}})
	if err != nil {
		s.log.Printf("lookup of %q failed: %s", id, err)
		respondError(w, http.StatusInternalServerError, codeStorageError, "cannot search the index")
		return email.Document{}, false
	}
	if len(documents) == 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "no message with id "+strconv.Quote(id))
		return email.Document{}, false
	}
	return documents[0], true
}

// updateCategory applies the category through the sink, answering the
// error cases itself.
func (s *Server) updateCategory(w http.ResponseWriter, id, category string) error {
	err := s.config.Sink.UpdateCategory(id, category)
	if err == nil {
		return nil
	}
	if errors.Is(err, lib.ErrDocumentNotFound) {
		respondError(w, http.StatusNotFound, codeNotFound, "no message with id "+strconv.Quote(id))
		return err
	}
	s.log.Printf("category update of %q failed: %s", id, err)
	respondError(w, http.StatusInternalServerError, codeStorageError, "cannot update the index")
	return err
}
