package model

// DefaultAppointmentDurationMinutes is the system fallback when neither the
// request nor the service supplies a duration.
const DefaultAppointmentDurationMinutes = 60

// EffectiveDuration applies the duration precedence used everywhere a duration
// is resolved: explicit request value, then the service's configured default,
// then the system default.
func EffectiveDuration(requested *int, svc *Service) int {
	if requested != nil && *requested > 0 {
		return *requested
	}
	if svc != nil && svc.DefaultDurationMinutes != nil && *svc.DefaultDurationMinutes > 0 {
		return *svc.DefaultDurationMinutes
	}
	return DefaultAppointmentDurationMinutes
}
