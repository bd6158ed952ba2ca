package interviewer

import (
	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/interviewer"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*AnthropicInterviewer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewAnthropicInterviewer(AnthropicConfig{
			APIKey: c.AnthropicAPIKey,
			Model:  c.AnthropicModel,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (interviewer.QuestionGenerator, error) {
		return do.MustInvoke[*AnthropicInterviewer](i), nil
	})
	do.Provide(injector, func(i do.Injector) (interviewer.Evaluator, error) {
		return do.MustInvoke[*AnthropicInterviewer](i), nil
	})
}
