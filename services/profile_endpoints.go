package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

type ProfileEndpoints struct {
	store       *repository.Store
	authService *AuthService
}

type CreateProfileRequest struct {
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Title     string `json:"title,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AddNoteRequest struct {
	Note     string `json:"note"`
	AuthorID string `json:"author_id"`
	Private  bool   `json:"private"`
}

func NewProfileEndpoints(store *repository.Store, authService *AuthService) *ProfileEndpoints {
	return &ProfileEndpoints{
		store:       store,
		authService: authService,
	}
}

func (e *ProfileEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", e.ListProfilesHandler)
		r.Post("/", e.CreateProfileHandler)
		r.Get("/{id}", e.GetProfileHandler)
		r.Put("/{id}", e.UpdateProfileHandler)
		r.Delete("/{id}", e.DeleteProfileHandler)
		r.Get("/{id}/notes", e.ListNotesHandler)
		r.Post("/{id}/notes", e.AddNoteHandler)
	})
}

func (e *ProfileEndpoints) ListProfilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := e.store.ListProfiles(r.Context())
	if err != nil {
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

func (e *ProfileEndpoints) CreateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		http.Error(w, "full_name is required", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}

	// Duplicate names are allowed; the id is the identity.
	profile := models.Profile{
		FullName:  req.FullName,
		Role:      req.Role,
		Title:     req.Title,
		AvatarURL: req.AvatarURL,
	}
	if err := e.store.CreateProfile(r.Context(), &profile); err != nil {
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

func (e *ProfileEndpoints) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := e.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (e *ProfileEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var patch repository.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Unknown ids are a silent no-op in the store; the handler answers 204
	// either way.
	if err := e.store.UpdateProfile(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *ProfileEndpoints) DeleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Deleting the profile you are logged in as is disallowed.
	if active := e.authService.ActiveProfile(); active != nil && active.ID == id {
		http.Error(w, "Cannot delete the active profile", http.StatusConflict)
		return
	}

	if err := e.store.DeleteProfile(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete profile", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *ProfileEndpoints) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	// Private notes are only shown to admin and manager profiles.
	includePrivate := false
	if active := e.authService.ActiveProfile(); active != nil {
		includePrivate = active.Role == models.RoleAdmin || active.Role == models.RoleManager
	}

	notes, err := e.store.NotesForEmployee(r.Context(), chi.URLParam(r, "id"), includePrivate)
	if err != nil {
		http.Error(w, "Failed to list notes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

func (e *ProfileEndpoints) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Note == "" {
		http.Error(w, "note is required", http.StatusBadRequest)
		return
	}
	if req.AuthorID == "" {
		if active := e.authService.ActiveProfile(); active != nil {
			req.AuthorID = active.ID
		}
	}

	note := models.InternalNote{
		EmployeeID: chi.URLParam(r, "id"),
		Note:       req.Note,
		AuthorID:   req.AuthorID,
		Private:    req.Private,
	}
	if err := e.store.AddNote(r.Context(), &note); err != nil {
		http.Error(w, "Failed to add note", http.StatusInternalServerError)
		return
	}

	slog.Info("Note added via API", "note_id", note.ID, "employee_id", note.EmployeeID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(note)
}
