package audio

import (
	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/audio"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Decoder, error) {
		return NewFileDecoder(), nil
	})
}
