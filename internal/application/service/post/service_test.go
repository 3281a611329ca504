package post_service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tweetbot-service/internal/custom_errors"
	model "tweetbot-service/internal/domain/models"
	"tweetbot-service/internal/infrastructure/logger"
	"tweetbot-service/internal/infrastructure/outbound/metrics/prometheus"
	image_repository_mock "tweetbot-service/mocks/image"
	post_repository_mock "tweetbot-service/mocks/post"
	uow_mock "tweetbot-service/mocks/uow"
)

type serviceMocks struct {
	postRepo  *post_repository_mock.Repository
	imageRepo *image_repository_mock.Repository
	txPosts   *post_repository_mock.Repository
	txImages  *image_repository_mock.Repository
	uow       *uow_mock.UnitOfWork
	tx        *uow_mock.Transaction
}

func newService(t *testing.T) (*PostService, *serviceMocks) {
	m := &serviceMocks{
		postRepo:  post_repository_mock.NewRepository(t),
		imageRepo: image_repository_mock.NewRepository(t),
		txPosts:   post_repository_mock.NewRepository(t),
		txImages:  image_repository_mock.NewRepository(t),
		uow:       uow_mock.NewUnitOfWork(t),
		tx:        uow_mock.NewTransaction(t),
	}
	svc := NewPostService(m.postRepo, m.imageRepo, m.uow, logger.New("test"), prometheus.NewPrometheusMetricsProvider())
	return svc, m
}

func TestPostService_CreatePost(t *testing.T) {
	tests := []struct {
		name        string
		dto         *model.CreatePostDTO
		mocks       func(m *serviceMocks)
		wantImages  int
		wantErrType error
	}{
		{
			name: "Success with images",
			dto: &model.CreatePostDTO{
				Title:     "  Gophers  ",
				Body:      "Go mascots",
				ImageURLs: []string{"https://example.com/a.jpg", "s3://bucket/b.jpg"},
			},
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.txPosts)
				m.tx.On("ImageRepository").Return(m.txImages)
				m.txPosts.On("Create", mock.Anything, &model.Post{Title: "Gophers", Body: "Go mascots"}).
					Return(&model.Post{ID: 1, Title: "Gophers", Body: "Go mascots"}, nil)
				m.txImages.On("Attach", mock.Anything, int64(1), mock.MatchedBy(func(imgs []*model.PostImage) bool {
					return len(imgs) == 2 && imgs[0].Position == 1 && imgs[1].Position == 2 && imgs[1].URL == "s3://bucket/b.jpg"
				})).Return(nil)
				m.txImages.On("GetByPost", mock.Anything, int64(1)).Return([]*model.PostImage{
					{ID: 1, PostID: 1, URL: "https://example.com/a.jpg", Position: 1},
					{ID: 2, PostID: 1, URL: "s3://bucket/b.jpg", Position: 2},
				}, nil)
				m.tx.On("Commit", mock.Anything).Return(nil)
			},
			wantImages: 2,
		},
		{
			name: "Success without images",
			dto:  &model.CreatePostDTO{Title: "T", Body: "B"},
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.txPosts)
				m.txPosts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(&model.Post{ID: 2, Title: "T", Body: "B"}, nil)
				m.tx.On("Commit", mock.Anything).Return(nil)
			},
			wantImages: 0,
		},
		{
			name:        "Empty title",
			dto:         &model.CreatePostDTO{Title: "   ", Body: "B"},
			mocks:       func(m *serviceMocks) {},
			wantErrType: custom_errors.ErrInvalidInput,
		},
		{
			name:        "Invalid image url",
			dto:         &model.CreatePostDTO{Title: "T", Body: "B", ImageURLs: []string{"not a url"}},
			mocks:       func(m *serviceMocks) {},
			wantErrType: custom_errors.ErrInvalidInput,
		},
		{
			name: "Begin fails",
			dto:  &model.CreatePostDTO{Title: "T", Body: "B"},
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(nil, errors.New("pool closed"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name: "Attach fails rolls back",
			dto:  &model.CreatePostDTO{Title: "T", Body: "B", ImageURLs: []string{"https://example.com/a.jpg"}},
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.txPosts)
				m.tx.On("ImageRepository").Return(m.txImages)
				m.txPosts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(&model.Post{ID: 3}, nil)
				m.txImages.On("Attach", mock.Anything, int64(3), mock.Anything).Return(custom_errors.ErrDatabaseQuery)
				m.tx.On("Rollback", mock.Anything).Return(nil)
			},
			wantErrType: custom_errors.ErrImageAttachFailed,
		},
		{
			name: "Commit fails",
			dto:  &model.CreatePostDTO{Title: "T", Body: "B"},
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.txPosts)
				m.txPosts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(&model.Post{ID: 4}, nil)
				m.tx.On("Commit", mock.Anything).Return(errors.New("conn reset"))
				m.tx.On("Rollback", mock.Anything).Return(errors.New("tx is closed"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.mocks(m)

			got, err := svc.CreatePost(context.Background(), tt.dto)
			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got.Post)
			assert.Len(t, got.Images, tt.wantImages)
		})
	}
}

func TestPostService_ImportPosts(t *testing.T) {
	t.Run("Imports all entries in one transaction", func(t *testing.T) {
		svc, m := newService(t)
		m.uow.On("Begin", mock.Anything).Return(m.tx, nil).Once()
		m.tx.On("PostRepository").Return(m.txPosts)
		m.tx.On("ImageRepository").Return(m.txImages)
		m.txPosts.On("Create", mock.Anything, &model.Post{Title: "one", Body: "first"}).Return(&model.Post{ID: 1}, nil)
		m.txPosts.On("Create", mock.Anything, &model.Post{Title: "two", Body: "second"}).Return(&model.Post{ID: 2}, nil)
		m.txImages.On("Attach", mock.Anything, int64(2), mock.Anything).Return(nil)
		m.txImages.On("GetByPost", mock.Anything, int64(2)).Return([]*model.PostImage{{ID: 1, PostID: 2}}, nil)
		m.tx.On("Commit", mock.Anything).Return(nil)

		n, err := svc.ImportPosts(context.Background(), []*model.ImportPostDTO{
			{Title: "one", Text: "first"},
			{Title: "two", Text: "second", ImageURLs: []string{"https://example.com/2.jpg"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Invalid entry rejects whole import before touching storage", func(t *testing.T) {
		svc, _ := newService(t)
		n, err := svc.ImportPosts(context.Background(), []*model.ImportPostDTO{
			{Title: "one", Text: "first"},
			{Title: "", Text: "missing title"},
		})
		assert.ErrorIs(t, err, custom_errors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "entry 1")
		assert.Zero(t, n)
	})

	t.Run("Storage failure rolls back", func(t *testing.T) {
		svc, m := newService(t)
		m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
		m.tx.On("PostRepository").Return(m.txPosts)
		m.txPosts.On("Create", mock.Anything, &model.Post{Title: "one", Body: "first"}).Return(&model.Post{ID: 1}, nil)
		m.txPosts.On("Create", mock.Anything, &model.Post{Title: "two", Body: "second"}).Return(nil, custom_errors.ErrDatabaseQuery)
		m.tx.On("Rollback", mock.Anything).Return(nil)

		n, err := svc.ImportPosts(context.Background(), []*model.ImportPostDTO{
			{Title: "one", Text: "first"},
			{Title: "two", Text: "second"},
		})
		assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)
		assert.Zero(t, n)
	})

	t.Run("Empty import", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.ImportPosts(context.Background(), nil)
		assert.ErrorIs(t, err, custom_errors.ErrInvalidInput)
	})
}

func TestPostService_GetPostByID(t *testing.T) {
	tests := []struct {
		name        string
		mocks       func(m *serviceMocks)
		wantErrType error
	}{
		{
			name: "Success",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.Post{ID: 1, Title: "T"}, nil)
				m.imageRepo.On("GetByPost", mock.Anything, int64(1)).Return([]*model.PostImage{{ID: 1}}, nil)
			},
		},
		{
			name: "Not found",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, custom_errors.ErrPostNotFound)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name: "Image query fails",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.Post{ID: 1}, nil)
				m.imageRepo.On("GetByPost", mock.Anything, int64(1)).Return(nil, errors.New("boom"))
			},
			wantErrType: custom_errors.ErrImageQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.mocks(m)

			got, err := svc.GetPostByID(context.Background(), 1)
			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.Post.ID)
			assert.Len(t, got.Images, 1)
		})
	}
}

func TestPostService_ListPosts(t *testing.T) {
	t.Run("Caps limit and attaches images", func(t *testing.T) {
		svc, m := newService(t)
		huge := 5000
		m.postRepo.On("List", mock.Anything, mock.MatchedBy(func(f model.PostFilters) bool {
			return f.Limit != nil && *f.Limit == maxListLimit
		})).Return([]*model.Post{{ID: 1}, {ID: 2}}, 7, nil)
		m.imageRepo.On("GetByPost", mock.Anything, int64(1)).Return([]*model.PostImage{}, nil)
		m.imageRepo.On("GetByPost", mock.Anything, int64(2)).Return([]*model.PostImage{{ID: 9}}, nil)

		got, total, err := svc.ListPosts(context.Background(), &model.PostFilters{Limit: &huge})
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, got, 2)
		assert.Len(t, got[1].Images, 1)
	})

	t.Run("Negative offset", func(t *testing.T) {
		svc, _ := newService(t)
		neg := -1
		_, _, err := svc.ListPosts(context.Background(), &model.PostFilters{Offset: &neg})
		assert.ErrorIs(t, err, custom_errors.ErrInvalidInput)
	})

	t.Run("Repository error", func(t *testing.T) {
		svc, m := newService(t)
		m.postRepo.On("List", mock.Anything, mock.Anything).Return(nil, 0, errors.New("boom"))
		_, _, err := svc.ListPosts(context.Background(), nil)
		assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		m.postRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
		assert.NoError(t, svc.DeletePost(context.Background(), 1))
	})

	t.Run("Not found", func(t *testing.T) {
		svc, m := newService(t)
		m.postRepo.On("Delete", mock.Anything, int64(1)).Return(custom_errors.ErrPostNotFound)
		assert.ErrorIs(t, svc.DeletePost(context.Background(), 1), custom_errors.ErrPostNotFound)
	})
}
