package synthesizer

import (
	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/synthesizer"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (synthesizer.Synthesizer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewOpenAITTS(OpenAITTSConfig{
			APIKey: c.OpenAIAPIKey,
			Model:  c.OpenAITTSModel,
			Voice:  c.OpenAITTSVoice,
			Format: c.OpenAITTSFormat,
		}), nil
	})
}
