package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"devconnect/middleware"
	"devconnect/models"
	"devconnect/service"

	"github.com/gin-gonic/gin"
)

// skillList accepts either "js, go" or ["js", "go"].
type skillList string

func (s *skillList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = skillList(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("skills must be a string or a list of strings")
	}
	*s = skillList(strings.Join(list, ","))
	return nil
}

type ProfileRequest struct {
	Company        *string    `json:"company" binding:"omitempty,max=200"`
	Website        *string    `json:"website" binding:"omitempty,max=500"`
	Location       *string    `json:"location" binding:"omitempty,max=200"`
	Bio            *string    `json:"bio" binding:"omitempty,max=2000"`
	Status         *string    `json:"status" binding:"omitempty,max=200"`
	GithubUsername *string    `json:"githubusername" binding:"omitempty,max=100"`
	Skills         *skillList `json:"skills"`
	YouTube        *string    `json:"youtube"`
	Twitter        *string    `json:"twitter"`
	Facebook       *string    `json:"facebook"`
	LinkedIn       *string    `json:"linkedin"`
	Instagram      *string    `json:"instagram"`
}

func (r ProfileRequest) input() models.ProfileInput {
	in := models.ProfileInput{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Bio:            r.Bio,
		Status:         r.Status,
		GithubUsername: r.GithubUsername,
		YouTube:        r.YouTube,
		Twitter:        r.Twitter,
		Facebook:       r.Facebook,
		LinkedIn:       r.LinkedIn,
		Instagram:      r.Instagram,
	}
	if r.Skills != nil {
		skills := string(*r.Skills)
		in.Skills = &skills
	}
	return in
}

type ExperienceRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Company     string `json:"company" binding:"max=200"`
	Location    string `json:"location" binding:"max=200"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description" binding:"max=2000"`
}

type EducationRequest struct {
	School       string `json:"school" binding:"max=200"`
	Degree       string `json:"degree" binding:"max=200"`
	FieldOfStudy string `json:"fieldofstudy" binding:"max=200"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description" binding:"max=2000"`
}

// MyProfile handles GET /api/profile/me.
func (h *Handler) MyProfile(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.Me(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile handles POST /api/profile.
func (h *Handler) UpsertProfile(c *gin.Context) {
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.Upsert(ctx, middleware.UserID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListProfiles handles GET /api/profile.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profiles, err := h.profiles.All(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// ProfileByUser handles GET /api/profile/user/:user_id.
func (h *Handler) ProfileByUser(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.ByUserID(ctx, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteAccount handles DELETE /api/profile.
func (h *Handler) DeleteAccount(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.profiles.DeleteAccount(ctx, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience.
func (h *Handler) AddExperience(c *gin.Context) {
	var req ExperienceRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.AddExperience(ctx, middleware.UserID(c), service.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id.
func (h *Handler) RemoveExperience(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.RemoveExperience(ctx, middleware.UserID(c), c.Param("exp_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddEducation handles PUT /api/profile/education.
func (h *Handler) AddEducation(c *gin.Context) {
	var req EducationRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.AddEducation(ctx, middleware.UserID(c), service.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id.
func (h *Handler) RemoveEducation(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.profiles.RemoveEducation(ctx, middleware.UserID(c), c.Param("edu_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
