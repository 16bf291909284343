package backoffice

import "context"

// TechnicianRatings returns the rating summary for one technician. A body that does not
// look like a summary reads as no ratings.
func (s *Service) TechnicianRatings(ctx context.Context, technicianID string) (RatingStats, error) {
	empty := RatingStats{Distribution: map[string]int{}}
	if err := requireID("technician", technicianID); err != nil {
		return empty, err
	}
	raw, err := s.api.Get(ctx, "/calificaciones-tecnico/"+seg(technicianID))
	if err != nil {
		return empty, err
	}
	stats, ok := decodeObject[RatingStats](raw, "data")
	if !ok {
		return empty, nil
	}
	if stats.Distribution == nil {
		stats.Distribution = map[string]int{}
	}
	return stats, nil
}
