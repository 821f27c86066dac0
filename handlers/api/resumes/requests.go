package resumes

import (
	"net/http"

	"resume-builder/core"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type (
	ValueRequest struct {
		Value *string `json:"value" validate:"required"`
	}

	FieldUpdateRequest struct {
		Field string  `json:"field" validate:"required"`
		Value *string `json:"value" validate:"required"`
	}

	MoveRequest struct {
		To *int `json:"to" validate:"required"`
	}

	CustomSectionRequest struct {
		Title string `json:"title" validate:"max=200"`
	}

	SkillRequest struct {
		Skill string `json:"skill" validate:"required,max=100"`
	}

	TemplateRequest struct {
		Template string `json:"template" validate:"required"`
	}

	EnhanceRequest struct {
		Text string `json:"text" validate:"required,max=5000"`
		Kind string `json:"kind" validate:"required,oneof=summary description highlights"`
	}

	FeedbackRequest struct {
		Section string `json:"section" validate:"required,oneof=personal experience education skills custom"`
		Content string `json:"content" validate:"max=5000"`
	}
)

func (body *ValueRequest) Bind(r *http.Request) error         { return validate.Struct(body) }
func (body *FieldUpdateRequest) Bind(r *http.Request) error   { return validate.Struct(body) }
func (body *MoveRequest) Bind(r *http.Request) error          { return validate.Struct(body) }
func (body *CustomSectionRequest) Bind(r *http.Request) error { return validate.Struct(body) }
func (body *SkillRequest) Bind(r *http.Request) error         { return validate.Struct(body) }
func (body *TemplateRequest) Bind(r *http.Request) error      { return validate.Struct(body) }
func (body *EnhanceRequest) Bind(r *http.Request) error       { return validate.Struct(body) }
func (body *FeedbackRequest) Bind(r *http.Request) error      { return validate.Struct(body) }

type (
	AddedResponse struct {
		ID     string         `json:"id"`
		Resume *core.Document `json:"resume"`
	}

	SkillResponse struct {
		Added  bool           `json:"added"`
		Resume *core.Document `json:"resume"`
	}

	EnhanceResponse struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}
)

// bind decodes a JSON body regardless of the declared content type, then
// validates it.
func bind(r *http.Request, v render.Binder) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return err
	}
	return v.Bind(r)
}
