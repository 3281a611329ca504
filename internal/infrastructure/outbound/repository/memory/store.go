package memory

import (
	"sync"

	model "tweetbot-service/internal/domain/models"
)

// Store holds posts and their images in process memory. Repositories and
// transactions built on the same Store share its data.
type Store struct {
	mu          sync.RWMutex
	posts       map[int64]*model.Post
	images      map[int64][]*model.PostImage
	nextPostID  int64
	nextImageID int64
}

func NewStore() *Store {
	return &Store{
		posts:       make(map[int64]*model.Post),
		images:      make(map[int64][]*model.PostImage),
		nextPostID:  1,
		nextImageID: 1,
	}
}

type snapshot struct {
	posts       map[int64]*model.Post
	images      map[int64][]*model.PostImage
	nextPostID  int64
	nextImageID int64
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &snapshot{
		posts:       make(map[int64]*model.Post, len(s.posts)),
		images:      make(map[int64][]*model.PostImage, len(s.images)),
		nextPostID:  s.nextPostID,
		nextImageID: s.nextImageID,
	}
	for id, p := range s.posts {
		cp := *p
		snap.posts[id] = &cp
	}
	for postID, imgs := range s.images {
		snap.images[postID] = cloneImages(imgs)
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = snap.posts
	s.images = snap.images
	s.nextPostID = snap.nextPostID
	s.nextImageID = snap.nextImageID
}

func cloneImages(imgs []*model.PostImage) []*model.PostImage {
	out := make([]*model.PostImage, 0, len(imgs))
	for _, img := range imgs {
		cp := *img
		out = append(out, &cp)
	}
	return out
}
