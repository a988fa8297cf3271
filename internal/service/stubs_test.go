package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listFeedFn     func(context.Context) ([]models.Post, error)
	listByAuthorFn func(context.Context, uint) ([]models.Post, error)
	deleteFn       func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListFeed(ctx context.Context) ([]models.Post, error) {
	return s.listFeedFn(ctx)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func postRepoReturning(post *models.Post, err error) *postRepoStub {
	return &postRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Post, error) { return post, err },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	existsFn       func(context.Context, uint, uint) (bool, error)
	createFn       func(context.Context, uint, uint) error
	deleteFn       func(context.Context, uint, uint) (int64, error)
	deleteByPostFn func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) Create(ctx context.Context, userID, postID uint) error {
	return s.createFn(ctx, userID, postID)
}
func (s *likeRepoStub) Delete(ctx context.Context, userID, postID uint) (int64, error) {
	return s.deleteFn(ctx, userID, postID)
}
func (s *likeRepoStub) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	deleteByPostFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}

// notificationRepoStub records created notifications in memory.
type notificationRepoStub struct {
	created   []models.Notification
	createErr error
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	n.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *n)
	return nil
}
func (s *notificationRepoStub) ListForRecipient(context.Context, uint) ([]models.Notification, error) {
	return s.created, nil
}
func (s *notificationRepoStub) MarkRead(context.Context, uint, []uint) (int64, error) {
	return 0, nil
}
func (s *notificationRepoStub) DeleteForPost(context.Context, uint) (int64, error) {
	return 0, nil
}

// txStub runs fn against fixed repositories without a store. It does not
// roll anything back.
type txStub struct {
	repos repository.Repositories
	calls int
}

func (s *txStub) InTx(_ context.Context, fn func(tx repository.Repositories) error) error {
	s.calls++
	return fn(s.repos)
}

// rewiringRunner runs the real transaction but lets a test swap repositories
// inside it, e.g. to fail midway through a batch.
type rewiringRunner struct {
	inner  repository.TxRunner
	rewire func(*repository.Repositories)
}

func (r *rewiringRunner) InTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	return r.inner.InTx(ctx, func(tx repository.Repositories) error {
		r.rewire(&tx)
		return fn(tx)
	})
}
