// Package handler translates HTTP requests into service calls and service
// results into JSON or HTML responses. Handlers hold no business rules.
package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
)

// ===== PROJECTS =====

// ProjectHandler serves the projects endpoints under /api/projects.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// HandleList serves GET /api/projects. ?featured=true narrows the list to
// featured projects.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	featured := false
	if raw := r.URL.Query().Get("featured"); raw != "" {
		var err error
		if featured, err = strconv.ParseBool(raw); err != nil {
			writeError(w, r, apperror.ValidationFailed("featured", "featured must be true or false"))
			return
		}
	}

	projects, err := h.projects.List(r.Context(), featured)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleGet serves GET /api/projects/{id}.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.Project, error) {
		return h.projects.Get(r.Context(), idParam(r))
	})(w, r)
}

// HandleCreate serves POST /api/projects and answers 201.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.ProjectInput) (*model.Project, error) {
		return h.projects.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/projects/{id}.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.ProjectInput) (*model.Project, error) {
		return h.projects.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/projects/{id} and answers 204.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.projects.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== SKILLS =====

// SkillHandler serves the skills endpoints under /api/skills.
type SkillHandler struct {
	skills *service.SkillService
}

// NewSkillHandler creates a SkillHandler.
func NewSkillHandler(skills *service.SkillService) *SkillHandler {
	return &SkillHandler{skills: skills}
}

// HandleList serves GET /api/skills.
func (h *SkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) ([]model.Skill, error) {
		return h.skills.List(r.Context())
	})(w, r)
}

// HandleCreate serves POST /api/skills and answers 201.
func (h *SkillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.SkillInput) (*model.Skill, error) {
		return h.skills.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/skills/{id}.
func (h *SkillHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.SkillInput) (*model.Skill, error) {
		return h.skills.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/skills/{id} and answers 204.
func (h *SkillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.skills.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== GENERAL SKILLS =====

// GeneralSkillHandler serves the general skills endpoints under /api/general-skills.
type GeneralSkillHandler struct {
	skills *service.GeneralSkillService
}

// NewGeneralSkillHandler creates a GeneralSkillHandler.
func NewGeneralSkillHandler(skills *service.GeneralSkillService) *GeneralSkillHandler {
	return &GeneralSkillHandler{skills: skills}
}

// HandleList serves GET /api/general-skills.
func (h *GeneralSkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) ([]model.GeneralSkill, error) {
		return h.skills.List(r.Context())
	})(w, r)
}

// HandleGet serves GET /api/general-skills/{id}.
func (h *GeneralSkillHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.GeneralSkill, error) {
		return h.skills.Get(r.Context(), idParam(r))
	})(w, r)
}

// HandleCreate serves POST /api/general-skills and answers 201.
func (h *GeneralSkillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.GeneralSkillInput) (*model.GeneralSkill, error) {
		return h.skills.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/general-skills/{id}.
func (h *GeneralSkillHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.GeneralSkillInput) (*model.GeneralSkill, error) {
		return h.skills.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/general-skills/{id} and answers 204.
func (h *GeneralSkillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.skills.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== EXPERIENCE =====

// ExperienceHandler serves the experience entries endpoints under /api/experience.
type ExperienceHandler struct {
	exps *service.ExperienceService
}

// NewExperienceHandler creates a ExperienceHandler.
func NewExperienceHandler(exps *service.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{exps: exps}
}

// HandleList serves GET /api/experience.
func (h *ExperienceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) ([]model.Experience, error) {
		return h.exps.List(r.Context())
	})(w, r)
}

// HandleGet serves GET /api/experience/{id}.
func (h *ExperienceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.Experience, error) {
		return h.exps.Get(r.Context(), idParam(r))
	})(w, r)
}

// HandleCreate serves POST /api/experience and answers 201.
func (h *ExperienceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.ExperienceInput) (*model.Experience, error) {
		return h.exps.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/experience/{id}.
func (h *ExperienceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.ExperienceInput) (*model.Experience, error) {
		return h.exps.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/experience/{id} and answers 204.
func (h *ExperienceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.exps.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== EDUCATION =====

// EducationHandler serves the education entries endpoints under /api/education.
type EducationHandler struct {
	edu *service.EducationService
}

// NewEducationHandler creates a EducationHandler.
func NewEducationHandler(edu *service.EducationService) *EducationHandler {
	return &EducationHandler{edu: edu}
}

// HandleList serves GET /api/education.
func (h *EducationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) ([]model.Education, error) {
		return h.edu.List(r.Context())
	})(w, r)
}

// HandleGet serves GET /api/education/{id}.
func (h *EducationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.Education, error) {
		return h.edu.Get(r.Context(), idParam(r))
	})(w, r)
}

// HandleCreate serves POST /api/education and answers 201.
func (h *EducationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.EducationInput) (*model.Education, error) {
		return h.edu.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/education/{id}.
func (h *EducationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.EducationInput) (*model.Education, error) {
		return h.edu.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/education/{id} and answers 204.
func (h *EducationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.edu.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== QUOTES =====

// QuoteHandler serves the quotes endpoints under /api/quotes.
type QuoteHandler struct {
	quotes *service.QuoteService
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// HandleList serves GET /api/quotes.
func (h *QuoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) ([]model.Quote, error) {
		return h.quotes.List(r.Context())
	})(w, r)
}

// HandleCreate serves POST /api/quotes and answers 201.
func (h *QuoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusCreated, func(r *http.Request, in service.QuoteInput) (*model.Quote, error) {
		return h.quotes.Create(r.Context(), in)
	})(w, r)
}

// HandleUpdate serves PUT /api/quotes/{id}.
func (h *QuoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.QuoteInput) (*model.Quote, error) {
		return h.quotes.Update(r.Context(), idParam(r), in)
	})(w, r)
}

// HandleDelete serves DELETE /api/quotes/{id} and answers 204.
func (h *QuoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete(func(r *http.Request) error {
		return h.quotes.Delete(r.Context(), idParam(r))
	})(w, r)
}

// ===== PROFILE, ABOUT, SITE SETTINGS =====

// ProfileHandler serves the three singleton documents: profile, about and
// site settings.
type ProfileHandler struct {
	profile  *service.ProfileService
	about    *service.AboutService
	settings *service.SiteSettingsService
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profile *service.ProfileService, about *service.AboutService, settings *service.SiteSettingsService) *ProfileHandler {
	return &ProfileHandler{profile: profile, about: about, settings: settings}
}

// HandleGetProfile answers 404 until a profile has been saved.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.Profile, error) {
		return h.profile.Get(r.Context())
	})(w, r)
}

// HandleSaveProfile serves both POST and PUT /api/profile.
func (h *ProfileHandler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.ProfileInput) (*model.Profile, error) {
		return h.profile.Save(r.Context(), in)
	})(w, r)
}

// HandleGetAbout serves GET /api/about. Before the first save it returns
// empty content.
func (h *ProfileHandler) HandleGetAbout(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.About, error) {
		return h.about.Get(r.Context())
	})(w, r)
}

// HandleSaveAbout serves PUT /api/about.
func (h *ProfileHandler) HandleSaveAbout(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.AboutInput) (*model.About, error) {
		return h.about.Save(r.Context(), in)
	})(w, r)
}

// HandleGetSettings serves GET /api/site-settings, falling back to defaults.
func (h *ProfileHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	handleGet(func(r *http.Request) (*model.SiteSettings, error) {
		return h.settings.Get(r.Context())
	})(w, r)
}

// HandleSaveSettings serves PUT /api/site-settings.
func (h *ProfileHandler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	handleWrite(http.StatusOK, func(r *http.Request, in service.SiteSettingsInput) (*model.SiteSettings, error) {
		return h.settings.Save(r.Context(), in)
	})(w, r)
}
