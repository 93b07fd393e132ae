package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

const nothingToMark = "nothing to mark"

// ConversationService handles conversation-related business logic
type ConversationService struct {
	pusherHolder
	convRepo   *repository.ConversationRepo
	memberRepo *repository.MemberRepo
	userRepo   *repository.UserRepo
	repos      *repository.Repositories
}

// NewConversationService creates a new ConversationService
func NewConversationService(repos *repository.Repositories) *ConversationService {
	return &ConversationService{
		convRepo:   repos.Conversation,
		memberRepo: repos.Member,
		userRepo:   repos.User,
		repos:      repos,
	}
}

// CreateConversationRequest represents create conversation request
type CreateConversationRequest struct {
	RecipientId string `json:"recipientId" validate:"required,max=36"`
}

// CreateConversation returns the conversation between the caller and the
// recipient, creating it on first contact. created reports whether this call
// created it.
func (s *ConversationService) CreateConversation(ctx context.Context, callerId, recipientId string) (*entity.ConversationInfo, bool, error) {
	if callerId == recipientId {
		return nil, false, errcode.ErrSelfConversation
	}

	var (
		conv    *entity.Conversation
		created bool
	)
	err := s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		pair, err := resolvePair(ctx, s.userRepo, tx, callerId, recipientId)
		if err != nil {
			return err
		}

		var convId string
		convId, created, err = ensureConversation(ctx, s.convRepo, s.memberRepo, tx, pair)
		if err != nil {
			return err
		}

		conv, err = s.convRepo.GetWithProfiles(ctx, tx, convId)
		return err
	})
	if err != nil {
		return nil, false, mapTxError(ctx, "create conversation", err, errcode.ErrInternalServer)
	}

	info := conv.ToConversationInfo()
	if created {
		s.announce(info, callerId)
		log.CtxInfo(ctx, "conversation created: id=%s, student_id=%s, lecturer_id=%s", conv.Id, conv.StudentId, conv.LecturerId)
	}
	return info, created, nil
}

// announce joins both participants to a brand new conversation room and
// tells the participant who did not start it
func (s *ConversationService) announce(info *entity.ConversationInfo, starterId string) {
	room := constant.ConversationRoom(info.Id)
	s.join(info.StudentId, room)
	s.join(info.LecturerId, room)

	other := info.StudentId
	if other == starterId {
		other = info.LecturerId
	}
	s.emit(constant.UserRoom(other), constant.EventNewConversation, info)
}

// ListConversations returns every conversation of a user, most recent first
func (s *ConversationService) ListConversations(ctx context.Context, userId string) ([]*entity.ConversationInfo, error) {
	convs, err := s.convRepo.ListByUser(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "list conversations failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer.Wrap(err)
	}

	infos := make([]*entity.ConversationInfo, 0, len(convs))
	for _, c := range convs {
		infos = append(infos, c.ToConversationInfo())
	}
	return infos, nil
}

// MarkSeen moves the caller's read pointer to the conversation's last message
func (s *ConversationService) MarkSeen(ctx context.Context, conversationId, userId string) (*entity.SeenStatus, error) {
	var (
		status  *entity.SeenStatus
		changed bool
	)
	err := s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		conv, err := s.convRepo.LockById(ctx, tx, conversationId)
		if err != nil {
			return err
		}
		if conv == nil {
			return errcode.ErrConvNotFound
		}
		member, err := s.memberRepo.Get(ctx, tx, conversationId, userId)
		if err != nil {
			return err
		}
		if member == nil {
			return errcode.ErrNotConvMember
		}

		switch {
		case conv.LastMessageId == nil:
			conv.Members = []*entity.ConversationMember{member}
			status = seenStatusOf(conv, userId)
			status.Message = nothingToMark
			return nil
		case entity.StrVal(conv.LastMessageSenderId) == userId:
			// a sender has already seen their own message
			conv.Members, err = s.memberRepo.ListByConversation(ctx, tx, conversationId)
			if err != nil {
				return err
			}
			status = seenStatusOf(conv, userId)
			return nil
		}

		if err := s.memberRepo.MarkSeen(ctx, tx, conversationId, userId, *conv.LastMessageId, entity.Now()); err != nil {
			return err
		}
		conv.Members, err = s.memberRepo.ListByConversation(ctx, tx, conversationId)
		if err != nil {
			return err
		}
		status = seenStatusOf(conv, userId)
		changed = true
		return nil
	})
	if err != nil {
		return nil, mapTxError(ctx, "mark seen", err, errcode.ErrInternalServer)
	}

	if changed {
		s.emit(constant.ConversationRoom(conversationId), constant.EventReadMessage, status)
	}
	return status, nil
}

// IsMember reports whether userId belongs to a live conversation
func (s *ConversationService) IsMember(ctx context.Context, conversationId, userId string) (bool, error) {
	m, err := s.memberRepo.Get(ctx, nil, conversationId, userId)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// ConversationIdsOf returns the ids of every live conversation of a user
func (s *ConversationService) ConversationIdsOf(ctx context.Context, userId string) ([]string, error) {
	return s.convRepo.IdsByUser(ctx, userId)
}

func seenStatusOf(conv *entity.Conversation, userId string) *entity.SeenStatus {
	status := &entity.SeenStatus{
		ConversationId: conv.Id,
		UserId:         userId,
		SeenBy:         conv.SeenBy(),
	}
	if m := conv.Member(userId); m != nil {
		status.UnreadCount = m.UnreadCount
		status.LastReadAt = m.LastReadAt
		status.LastSeenMessageId = m.LastSeenMessageId
	}
	return status
}

// resolvePair looks both users up and orders them into a (student, lecturer) pair
func resolvePair(ctx context.Context, userRepo *repository.UserRepo, tx *gorm.DB, a, b string) (entity.Pair, error) {
	participants := make([]entity.Participant, 0, 2)
	for _, id := range []string{a, b} {
		u, err := userRepo.GetById(ctx, tx, id)
		if err != nil {
			return entity.Pair{}, err
		}
		if u == nil {
			return entity.Pair{}, errcode.ErrUserNotFound
		}
		p, err := entity.ParticipantOf(u)
		if err != nil {
			return entity.Pair{}, err
		}
		participants = append(participants, p)
	}
	return entity.ResolvePair(participants[0], participants[1])
}

// ensureConversation returns the live conversation of pair, creating it and
// its member rows when there is none
func ensureConversation(ctx context.Context, convRepo *repository.ConversationRepo, memberRepo *repository.MemberRepo, tx *gorm.DB, pair entity.Pair) (string, bool, error) {
	conv, created, err := convRepo.UpsertByPair(ctx, tx, pair)
	if err != nil {
		return "", false, err
	}
	if conv == nil {
		return "", false, errcode.ErrConvNotFound
	}
	if err := memberRepo.EnsureMembers(ctx, tx, conv.Id, pair); err != nil {
		return "", false, err
	}
	return conv.Id, created, nil
}
