package service

import "context"

type ParticipantRepo interface {
	IsParticipant(ctx context.Context, userID int64, roomID string) (bool, error)
	ListByRoom(ctx context.Context, roomID string) ([]int64, error)
}

// ParticipationService answers "may this user enter this room". It is the
// authorization collaborator of the gateway; the gateway treats a failure or
// timeout here as a denied join.
type ParticipationService struct {
	participants ParticipantRepo
}

func NewParticipationService(participants ParticipantRepo) *ParticipationService {
	return &ParticipationService{participants: participants}
}

// CheckParticipation implements gateway.ParticipationChecker.
func (s *ParticipationService) CheckParticipation(ctx context.Context, userID int64, roomID string) (bool, error) {
	return s.participants.IsParticipant(ctx, userID, roomID)
}

func (s *ParticipationService) ListParticipants(ctx context.Context, roomID string) ([]int64, error) {
	return s.participants.ListByRoom(ctx, roomID)
}
