package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/store"
)

// LikeAPI is the slice of the REST client the like coordinator needs.
type LikeAPI interface {
	LikePost(ctx context.Context, postID uint) error
	UnlikePost(ctx context.Context, postID uint) error
}

// LikeService applies like toggles optimistically: the local flip happens
// before the confirming request, and a failed confirmation rolls the post
// back to its pre-toggle snapshot.
type LikeService struct {
	api   LikeAPI
	store *store.Store
}

// NewLikeService creates a LikeService.
func NewLikeService(likeAPI LikeAPI, st *store.Store) *LikeService {
	return &LikeService{api: likeAPI, store: st}
}

// ToggleLike flips userID's like on the post. Concurrent toggles on the
// same post are allowed; each invocation snapshots its own pre-toggle
// state, and the store discards a rollback when a later toggle has
// already run, so a slow failure cannot clobber a newer confirmed state.
func (s *LikeService) ToggleLike(ctx context.Context, postID, userID uint) error {
	snap, ok := s.store.BeginLikeToggle(postID)
	if !ok {
		return models.NewValidationError("post not found in local state")
	}

	wasLiked := false
	for _, id := range snap.LikedBy {
		if id == userID {
			wasLiked = true
			break
		}
	}
	nowLiked := !wasLiked

	s.store.ApplyLikeToggle(postID, userID, nowLiked)

	var err error
	if nowLiked {
		err = s.api.LikePost(ctx, postID)
	} else {
		err = s.api.UnlikePost(ctx, postID)
	}
	if err != nil {
		if s.store.RollbackLikeToggle(postID, snap) {
			observability.OptimisticRollbacksTotal.WithLabelValues("like").Inc()
		}
		return err
	}

	// Server agreed; the optimistic state is the confirmed state.
	return nil
}
