package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vvakame/selconflict/internal/ir"
)

// Rule is the gqlerror rule name of diagnostics produced by the selection conflict validation.
const Rule = "SelectionConflict"

// Message is the kind of a diagnostic along with its parameters.
type Message interface {
	Code() string
	String() string
	isMessage()
}

var _ Message = AmbiguousFieldAlias{}
var _ Message = AmbiguousFieldType{}

// AmbiguousFieldAlias means one response key resolves to two different fields.
type AmbiguousFieldAlias struct {
	ResponseKey string
	LeftName    string
	RightName   string
}

func (AmbiguousFieldAlias) isMessage() {}

func (AmbiguousFieldAlias) Code() string { return "AMBIGUOUS_FIELD_ALIAS" }

func (m AmbiguousFieldAlias) String() string {
	return fmt.Sprintf(
		"Field '%s' is ambiguous because it references two different fields: '%s' and '%s'",
		m.ResponseKey, m.LeftName, m.RightName,
	)
}

// AmbiguousFieldType means one response key resolves to fields of different shapes.
type AmbiguousFieldType struct {
	ResponseKey     string
	LeftName        string
	RightName       string
	LeftTypeString  string
	RightTypeString string
}

func (AmbiguousFieldType) isMessage() {}

func (AmbiguousFieldType) Code() string { return "AMBIGUOUS_FIELD_TYPE" }

func (m AmbiguousFieldType) String() string {
	return fmt.Sprintf(
		"Field '%s' is ambiguous because it references fields with different types: '%s' with type '%s' and '%s' with type '%s'",
		m.ResponseKey, m.LeftName, m.LeftTypeString, m.RightName, m.RightTypeString,
	)
}

type Annotation struct {
	Label    string
	Location ir.Location
}

type Diagnostic struct {
	Message     Message
	Location    ir.Location
	Annotations []Annotation
}

func New(message Message, location ir.Location) *Diagnostic {
	return &Diagnostic{
		Message:  message,
		Location: location,
	}
}

// Annotate adds a secondary location to d and returns d.
func (d *Diagnostic) Annotate(label string, location ir.Location) *Diagnostic {
	d.Annotations = append(d.Annotations, Annotation{
		Label:    label,
		Location: location,
	})
	return d
}

// GQLError converts d into the error shape used across the GraphQL tooling.
// The primary location comes first, followed by the annotations in the same document.
// Annotations pointing into another document are listed in the "annotations" extension
// since gqlerror locations carry no file.
func (d *Diagnostic) GQLError() *gqlerror.Error {
	gErr := &gqlerror.Error{
		Message: d.Message.String(),
		Rule:    Rule,
		Extensions: map[string]interface{}{
			"code": d.Message.Code(),
		},
	}
	gErr.Locations = append(gErr.Locations, gqlerror.Location{
		Line:   d.Location.Line,
		Column: d.Location.Column,
	})
	var elsewhere []string
	for _, annotation := range d.Annotations {
		if annotation.Location.Source != d.Location.Source {
			elsewhere = append(elsewhere, annotation.Label+": "+annotation.Location.String())
			continue
		}
		gErr.Locations = append(gErr.Locations, gqlerror.Location{
			Line:   annotation.Location.Line,
			Column: annotation.Location.Column,
		})
	}
	if len(elsewhere) != 0 {
		gErr.Extensions["annotations"] = elsewhere
	}
	gErr.SetFile(d.Location.Source)

	return gErr
}

var _ error = List(nil)
var _ json.Marshaler = List(nil)
var _ yaml.InterfaceMarshaler = List(nil)

// List is a non-empty set of diagnostics reported by one validation.
type List []*Diagnostic

func (list List) Error() string {
	messages := make([]string, 0, len(list))
	for _, d := range list {
		messages = append(messages, d.Location.String()+": "+d.Message.String())
	}

	return strings.Join(messages, "\n")
}

func (list List) GQLErrors() gqlerror.List {
	result := make(gqlerror.List, 0, len(list))
	for _, d := range list {
		result = append(result, d.GQLError())
	}

	return result
}

type annotationObject struct {
	Label    string `json:"label" yaml:"label"`
	Location string `json:"location" yaml:"location"`
}

type diagnosticObject struct {
	Code        string             `json:"code" yaml:"code"`
	Message     string             `json:"message" yaml:"message"`
	Location    string             `json:"location" yaml:"location"`
	Annotations []annotationObject `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

func (list List) marshalObject() interface{} {
	result := make([]*diagnosticObject, 0, len(list))
	for _, d := range list {
		obj := &diagnosticObject{
			Code:     d.Message.Code(),
			Message:  d.Message.String(),
			Location: d.Location.String(),
		}
		for _, annotation := range d.Annotations {
			obj.Annotations = append(obj.Annotations, annotationObject{
				Label:    annotation.Label,
				Location: annotation.Location.String(),
			})
		}
		result = append(result, obj)
	}

	return result
}

func (list List) MarshalJSON() ([]byte, error) {
	return json.Marshal(list.marshalObject())
}

func (list List) MarshalYAML() (interface{}, error) {
	return list.marshalObject(), nil
}
