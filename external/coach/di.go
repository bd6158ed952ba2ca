package coach

import (
	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/coach"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, coach.Factory(func() coach.Coach {
		return NewPCMCoach()
	}))
}
