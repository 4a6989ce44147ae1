package progress

import (
	"encoding/json"
	"fmt"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

// Content is the decoded body of an activity. The concrete type follows the activity type.
type Content interface {
	Kind() types.ActivityType
}

type QuizContent struct {
	Questions []QuizQuestion `json:"questions" yaml:"questions" validate:"dive"`
}

type QuizQuestion struct {
	ID            string   `json:"id" yaml:"id" validate:"required"`
	Prompt        string   `json:"prompt" yaml:"prompt" validate:"required"`
	Options       []string `json:"options" yaml:"options" validate:"min=2"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation"`
}

type ReadingContent struct {
	Sections []ReadingSection `json:"sections" yaml:"sections" validate:"dive"`
}

type ReadingSection struct {
	Title string `json:"title" yaml:"title" validate:"required"`
	Body  string `json:"body" yaml:"body"`
}

type LabContent struct {
	Scenarios []LabScenario `json:"scenarios" yaml:"scenarios" validate:"dive"`
}

// LabScenario.CorrectAnswer holds one option or a list of options for multi-select scenarios.
type LabScenario struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	Title         string        `json:"title" yaml:"title"`
	Description   string        `json:"description" yaml:"description"`
	Image         string        `json:"image,omitempty" yaml:"image"`
	Question      string        `json:"question" yaml:"question" validate:"required"`
	Options       []string      `json:"options" yaml:"options"`
	CorrectAnswer any           `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string        `json:"explanation,omitempty" yaml:"explanation"`
	Solutions     []LabSolution `json:"solutions,omitempty" yaml:"solutions"`
}

type LabSolution struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// UnimplementedContent keeps the raw body of an activity whose type is not known.
type UnimplementedContent struct {
	Type types.ActivityType `json:"type"`
	Raw  json.RawMessage    `json:"raw,omitempty"`
}

func (QuizContent) Kind() types.ActivityType          { return types.ActivityTypeQuiz }
func (ReadingContent) Kind() types.ActivityType       { return types.ActivityTypeReading }
func (LabContent) Kind() types.ActivityType           { return types.ActivityTypeLab }
func (UnimplementedContent) Kind() types.ActivityType { return types.ActivityTypeUnimplemented }

// DecodeContent parses raw into the content shape for typ.
// Unknown types decode to UnimplementedContent without error.
func DecodeContent(typ types.ActivityType, raw []byte) (Content, error) {
	kind := types.ParseActivityType(string(typ))
	empty := len(raw) == 0 || string(raw) == "null"
	switch kind {
	case types.ActivityTypeQuiz:
		var c QuizContent
		if !empty {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode quiz content: %w", err)
			}
		}
		return c, nil
	case types.ActivityTypeReading:
		var c ReadingContent
		if !empty {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode reading content: %w", err)
			}
		}
		return c, nil
	case types.ActivityTypeLab:
		var c LabContent
		if !empty {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode lab content: %w", err)
			}
		}
		return c, nil
	default:
		c := UnimplementedContent{Type: typ}
		if !empty {
			c.Raw = append(json.RawMessage(nil), raw...)
		}
		return c, nil
	}
}
