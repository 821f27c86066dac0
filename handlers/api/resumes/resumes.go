// Package resumes exposes a user's resume document over HTTP.
package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"resume-builder/core"
	"resume-builder/enhance"
	"resume-builder/identity"
	"resume-builder/preview"
	"resume-builder/resume"
	"resume-builder/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type Sessions interface {
	Get(ctx context.Context, userID string) (*session.Session, error)
}

// section adapts one list section of the document to the shared list routes.
type section struct {
	add    func(s *resume.Store, title string) string
	update func(s *resume.Store, index int, field, value string) error
	remove func(s *resume.Store, index int) error
	move   func(s *resume.Store, from, to int) error
	titled bool
}

var sections = map[string]section{
	"experience": {
		add: func(s *resume.Store, _ string) string { return s.AddExperienceEntry() },
		update: func(s *resume.Store, index int, field, value string) error {
			f, err := core.ParseExperienceField(field)
			if err != nil {
				return err
			}
			return s.UpdateExperienceEntry(index, f, value)
		},
		remove: (*resume.Store).RemoveExperienceEntry,
		move:   (*resume.Store).MoveExperienceEntry,
	},
	"education": {
		add: func(s *resume.Store, _ string) string { return s.AddEducationEntry() },
		update: func(s *resume.Store, index int, field, value string) error {
			f, err := core.ParseEducationField(field)
			if err != nil {
				return err
			}
			return s.UpdateEducationEntry(index, f, value)
		},
		remove: (*resume.Store).RemoveEducationEntry,
		move:   (*resume.Store).MoveEducationEntry,
	},
	"custom": {
		add: (*resume.Store).AddCustomSection,
		update: func(s *resume.Store, index int, field, value string) error {
			f, err := core.ParseCustomSectionField(field)
			if err != nil {
				return err
			}
			return s.UpdateCustomSection(index, f, value)
		},
		remove: (*resume.Store).RemoveCustomSection,
		move:   (*resume.Store).MoveCustomSection,
		titled: true,
	},
}

// Routes serves the resume API. Callers mount it behind identity.Middleware.
func Routes(sessions Sessions, enhancer enhance.Enhancer) chi.Router {
	r := chi.NewRouter()
	r.Get("/", HandleGet(sessions))
	r.Put("/personal/{field}", HandleUpdatePersonal(sessions))
	for name, sec := range sections {
		r.Route("/"+name, func(r chi.Router) {
			r.Post("/", HandleAddEntry(sessions, sec))
			r.Route("/{index}", func(r chi.Router) {
				r.Patch("/", HandleUpdateEntry(sessions, sec))
				r.Delete("/", HandleRemoveEntry(sessions, sec))
				r.Post("/move", HandleMoveEntry(sessions, sec))
			})
		})
	}
	r.Post("/skills", HandleAddSkill(sessions))
	r.Delete("/skills/{index}", HandleRemoveSkill(sessions))
	r.Put("/template", HandleChangeTemplate(sessions))
	r.Get("/preview", HandlePreview(sessions))
	r.Group(func(r chi.Router) {
		r.Use(requirePremium)
		r.Post("/enhance", HandleEnhance(enhancer))
		r.Post("/feedback", HandleFeedback(enhancer))
	})
	return r
}

func sessionFor(sessions Sessions, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	e, ok := identity.FromContext(r.Context())
	if !ok {
		render.Render(w, r, errUnauthorized)
		return nil, false
	}
	sess, err := sessions.Get(r.Context(), e.UserID.String())
	if err != nil {
		logrus.WithError(err).WithField("user_id", e.UserID).Error("Resume unavailable")
		render.Render(w, r, errUnavailable)
		return nil, false
	}
	return sess, true
}

// mutate applies op and responds with the snapshot it produced.
func mutate(sessions Sessions, w http.ResponseWriter, r *http.Request, op func(s *resume.Store) error) {
	sess, ok := sessionFor(sessions, w, r)
	if !ok {
		return
	}
	var doc *core.Document
	err := sess.Do(func(s *resume.Store) error {
		if err := op(s); err != nil {
			return err
		}
		doc = s.Snapshot()
		return nil
	})
	if err != nil {
		render.Render(w, r, errOperation(err))
		return
	}
	render.JSON(w, r, doc)
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		render.Render(w, r, errBadRequest(fmt.Errorf("invalid index %q", chi.URLParam(r, "index"))))
		return 0, false
	}
	return index, true
}

func HandleGet(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFor(sessions, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, sess.Snapshot())
	}
}

func HandleUpdatePersonal(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field, err := core.ParsePersonalField(chi.URLParam(r, "field"))
		if err != nil {
			render.Render(w, r, errOperation(err))
			return
		}
		data := &ValueRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return s.UpdatePersonalField(field, *data.Value)
		})
	}
}

func HandleAddEntry(sessions Sessions, sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var title string
		if sec.titled {
			data := &CustomSectionRequest{}
			if err := bind(r, data); err != nil && !errors.Is(err, io.EOF) {
				render.Render(w, r, errBadRequest(err))
				return
			}
			title = data.Title
		}
		sess, ok := sessionFor(sessions, w, r)
		if !ok {
			return
		}
		var resp AddedResponse
		sess.Do(func(s *resume.Store) error {
			resp.ID = sec.add(s, title)
			resp.Resume = s.Snapshot()
			return nil
		})
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}

func HandleUpdateEntry(sessions Sessions, sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		data := &FieldUpdateRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return sec.update(s, index, data.Field, *data.Value)
		})
	}
}

func HandleRemoveEntry(sessions Sessions, sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return sec.remove(s, index)
		})
	}
}

func HandleMoveEntry(sessions Sessions, sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, ok := indexParam(w, r)
		if !ok {
			return
		}
		data := &MoveRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return sec.move(s, from, *data.To)
		})
	}
}

func HandleAddSkill(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &SkillRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}
		sess, ok := sessionFor(sessions, w, r)
		if !ok {
			return
		}
		var resp SkillResponse
		sess.Do(func(s *resume.Store) error {
			resp.Added = s.AddSkill(data.Skill)
			resp.Resume = s.Snapshot()
			return nil
		})
		if resp.Added {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, resp)
	}
}

func HandleRemoveSkill(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return s.RemoveSkill(index)
		})
	}
}

func HandleChangeTemplate(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &TemplateRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}
		mutate(sessions, w, r, func(s *resume.Store) error {
			return s.ChangeTemplate(core.TemplateID(data.Template))
		})
	}
}

// HandlePreview renders the current snapshot. The template query parameter
// previews another template without changing the document.
func HandlePreview(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFor(sessions, w, r)
		if !ok {
			return
		}
		doc := sess.Snapshot()
		id := doc.Template
		if q := r.URL.Query().Get("template"); q != "" {
			id = core.TemplateID(q)
		}

		var page bytes.Buffer
		if err := preview.RenderTemplate(&page, doc, id); err != nil {
			render.Render(w, r, errOperation(err))
			return
		}
		render.HTML(w, r, page.String())
	}
}

// requirePremium admits paying subscribers and admins.
func requirePremium(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e, ok := identity.FromContext(r.Context())
		if !ok {
			render.Render(w, r, errUnauthorized)
			return
		}
		if !e.IsPremium() && !e.IsAdmin {
			render.Render(w, r, errPremium)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleEnhance returns improved text without touching the document; clients
// write accepted suggestions back through the field routes.
func HandleEnhance(enhancer enhance.Enhancer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &EnhanceRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}

		text, err := enhancer.Enhance(r.Context(), data.Text, data.Kind)
		if err != nil {
			logrus.WithError(err).WithField("kind", data.Kind).Warn("Enhancement failed")
			render.Render(w, r, errEnhancer)
			return
		}
		render.JSON(w, r, EnhanceResponse{Kind: data.Kind, Text: text})
	}
}

func HandleFeedback(enhancer enhance.Enhancer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &FeedbackRequest{}
		if err := bind(r, data); err != nil {
			render.Render(w, r, errBadRequest(err))
			return
		}

		fb, err := enhancer.Feedback(r.Context(), data.Section, data.Content)
		if err != nil {
			logrus.WithError(err).WithField("section", data.Section).Warn("Feedback failed")
			render.Render(w, r, errEnhancer)
			return
		}
		render.JSON(w, r, fb)
	}
}
