package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"taskflow-project/taskflow-service/middleware"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/services"
	"taskflow-project/taskflow-service/utils"
)

type MemberHandler struct {
	service  *services.MemberService
	validate *validator.Validate
}

func NewMemberHandler(service *services.MemberService, validate *validator.Validate) *MemberHandler {
	return &MemberHandler{service: service, validate: validate}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=viewer contributor manager admin"`
}

func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.Register(req.Username, req.Email, req.FullName, req.Password, models.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	member.PasswordHash = ""
	writeJSON(w, http.StatusCreated, member)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, member, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"memberId": member.ID,
		"username": member.Username,
		"role":     member.Role,
	})
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMember(mux.Vars(r)["memberID"])
	if err != nil {
		writeError(w, err)
		return
	}
	member.PasswordHash = ""
	writeJSON(w, http.StatusOK, member)
}

// ListMembers masks email addresses; full addresses are not part of the
// listing surface.
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	members := h.service.ListMembers(activeOnly)

	type memberView struct {
		ID       string      `json:"id"`
		Username string      `json:"username"`
		Email    string      `json:"email"`
		FullName string      `json:"fullName"`
		Role     models.Role `json:"role"`
		IsActive bool        `json:"isActive"`
	}
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{
			ID:       m.ID,
			Username: m.Username,
			Email:    utils.MaskEmail(m.Email),
			FullName: m.FullName,
			Role:     m.Role,
			IsActive: m.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type updateProfileRequest struct {
	FullName *string        `json:"fullName"`
	Email    *string        `json:"email" validate:"omitempty,email"`
	Metadata map[string]any `json:"metadata"`
}

func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.UpdateProfile(mux.Vars(r)["memberID"], req.FullName, req.Email, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	member.PasswordHash = ""
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.DeactivateMember(mux.Vars(r)["memberID"])
	if err != nil {
		writeError(w, err)
		return
	}
	member.PasswordHash = ""
	writeJSON(w, http.StatusOK, member)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=viewer contributor manager admin"`
}

func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req changeRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.ChangeRole(mux.Vars(r)["memberID"], models.Role(req.Role), claims.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	member.PasswordHash = ""
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	newPassword, err := h.service.ResetPassword(mux.Vars(r)["memberID"], claims.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": newPassword})
}
