package service

import (
	"context"
	"encoding/json"

	"github.com/mbeoliero/kit/log"
	"gorm.io/datatypes"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

// NotificationService handles notification business logic
type NotificationService struct {
	pusherHolder
	notifRepo *repository.NotificationRepo
	userRepo  *repository.UserRepo
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repository.Repositories) *NotificationService {
	return &NotificationService{
		notifRepo: repos.Notification,
		userRepo:  repos.User,
	}
}

// CreateNotificationRequest represents create notification request
type CreateNotificationRequest struct {
	UserId    string                 `json:"userId" validate:"required,max=36"`
	Title     string                 `json:"title" validate:"required,max=255"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	Type      string                 `json:"type" validate:"required,oneof=system message order_status payment course"`
	RelatedId string                 `json:"relatedId" validate:"omitempty,max=64"`
	Data      map[string]interface{} `json:"data"`
}

// BroadcastRequest targets explicit users, else every user of a role, else everybody
type BroadcastRequest struct {
	UserIds []string               `json:"userIds" validate:"omitempty,dive,required,max=36"`
	Role    string                 `json:"role" validate:"omitempty,oneof=student lecturer admin"`
	Title   string                 `json:"title" validate:"required,max=255"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Type    string                 `json:"type" validate:"omitempty,oneof=system message order_status payment course"`
	Data    map[string]interface{} `json:"data"`
}

// NotificationReadEvent is the payload of the notification-read event
type NotificationReadEvent struct {
	Id          string `json:"id,omitempty"`
	All         bool   `json:"all"`
	Count       int64  `json:"count"`
	UnreadCount int64  `json:"unreadCount"`
}

// Create stores a notification and pushes it to the owner
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*entity.Notification, error) {
	user, err := s.userRepo.GetById(ctx, nil, req.UserId)
	if err != nil {
		log.CtxError(ctx, "get user failed: user_id=%s, error=%v", req.UserId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}

	data, err := encodeData(req.Data)
	if err != nil {
		return nil, errcode.ErrInvalidParam.Wrap(err)
	}

	n := &entity.Notification{
		Id:        entity.NewId(),
		UserId:    req.UserId,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		RelatedId: entity.StrPtr(req.RelatedId),
		Data:      data,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		log.CtxError(ctx, "create notification failed: user_id=%s, error=%v", req.UserId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	room := constant.UserRoom(n.UserId)
	s.emit(room, constant.EventNewNotification, n)
	switch n.Type {
	case constant.NotificationTypeOrderStatus:
		s.emit(room, constant.EventOrderStatusUpdated, n)
	case constant.NotificationTypePayment:
		s.emit(room, constant.EventPaymentConfirmed, n)
	}
	return n, nil
}

// List returns one page of a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userId string, page, limit int, unreadOnly bool) (*entity.NotificationPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = constant.DefaultPageSize
	}
	if limit > constant.MaxPageSize {
		limit = constant.MaxPageSize
	}

	items, total, err := s.notifRepo.List(ctx, userId, unreadOnly, (page-1)*limit, limit)
	if err != nil {
		log.CtxError(ctx, "list notifications failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	unread, err := s.notifRepo.CountUnread(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "count unread notifications failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	return &entity.NotificationPage{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// MarkRead marks one of the caller's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, userId, id string) (*entity.Notification, error) {
	n, err := s.owned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.notifRepo.MarkRead(ctx, userId, id); err != nil {
			log.CtxError(ctx, "mark notification read failed: id=%s, error=%v", id, err)
			return nil, errcode.ErrInternalServer.Wrap(err)
		}
		n.IsRead = true
	}

	unread, err := s.notifRepo.CountUnread(ctx, userId)
	if err != nil {
		log.CtxWarn(ctx, "count unread notifications failed: user_id=%s, error=%v", userId, err)
	}
	s.emit(constant.UserRoom(userId), constant.EventNotificationRead, &NotificationReadEvent{
		Id:          id,
		Count:       1,
		UnreadCount: unread,
	})
	return n, nil
}

// MarkAllRead marks every unread notification of the caller read
func (s *NotificationService) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	count, err := s.notifRepo.MarkAllRead(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "mark all notifications read failed: user_id=%s, error=%v", userId, err)
		return 0, errcode.ErrInternalServer.Wrap(err)
	}

	s.emit(constant.UserRoom(userId), constant.EventNotificationRead, &NotificationReadEvent{
		All:   true,
		Count: count,
	})
	return count, nil
}

// Delete soft deletes one of the caller's notifications
func (s *NotificationService) Delete(ctx context.Context, userId, id string) error {
	if _, err := s.owned(ctx, userId, id); err != nil {
		return err
	}
	if err := s.notifRepo.SoftDelete(ctx, userId, id); err != nil {
		log.CtxError(ctx, "delete notification failed: id=%s, error=%v", id, err)
		return errcode.ErrInternalServer.Wrap(err)
	}
	return nil
}

// Broadcast stores one notification per target user and pushes each to its owner
func (s *NotificationService) Broadcast(ctx context.Context, req *BroadcastRequest) (int, error) {
	targets, err := s.targets(ctx, req)
	if err != nil {
		log.CtxError(ctx, "resolve broadcast targets failed: %v", err)
		return 0, errcode.ErrInternalServer.Wrap(err)
	}
	if len(targets) == 0 {
		return 0, nil
	}

	data, err := encodeData(req.Data)
	if err != nil {
		return 0, errcode.ErrInvalidParam.Wrap(err)
	}
	typ := req.Type
	if typ == "" {
		typ = constant.NotificationTypeSystem
	}

	list := make([]*entity.Notification, 0, len(targets))
	for _, userId := range targets {
		list = append(list, &entity.Notification{
			Id:      entity.NewId(),
			UserId:  userId,
			Title:   req.Title,
			Message: req.Message,
			Type:    typ,
			Data:    data,
		})
	}
	if err := s.notifRepo.CreateBatch(ctx, list); err != nil {
		log.CtxError(ctx, "broadcast notifications failed: %v", err)
		return 0, errcode.ErrInternalServer.Wrap(err)
	}

	for _, n := range list {
		s.emit(constant.UserRoom(n.UserId), constant.EventBroadcastNotification, n)
	}
	log.CtxInfo(ctx, "notification broadcast: targets=%d, role=%s", len(list), req.Role)
	return len(list), nil
}

func (s *NotificationService) targets(ctx context.Context, req *BroadcastRequest) ([]string, error) {
	if len(req.UserIds) == 0 {
		return s.userRepo.ListIds(ctx, req.Role)
	}

	// unknown ids are skipped rather than failing the whole broadcast
	users, err := s.userRepo.GetByIds(ctx, req.UserIds)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.Id)
	}
	return ids, nil
}

func (s *NotificationService) owned(ctx context.Context, userId, id string) (*entity.Notification, error) {
	n, err := s.notifRepo.Get(ctx, userId, id)
	if err != nil {
		log.CtxError(ctx, "get notification failed: id=%s, error=%v", id, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}
	if n == nil {
		return nil, errcode.ErrNotificationNotFound
	}
	return n, nil
}

func encodeData(data map[string]interface{}) (datatypes.JSON, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
