package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mbeoliero/kit/log"
	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/idgen"
)

// MessageService handles message-related business logic
type MessageService struct {
	pusherHolder
	msgRepo    *repository.MessageRepo
	convRepo   *repository.ConversationRepo
	memberRepo *repository.MemberRepo
	userRepo   *repository.UserRepo
	repos      *repository.Repositories
}

// NewMessageService creates a new MessageService
func NewMessageService(repos *repository.Repositories) *MessageService {
	return &MessageService{
		msgRepo:    repos.Message,
		convRepo:   repos.Conversation,
		memberRepo: repos.Member,
		userRepo:   repos.User,
		repos:      repos,
	}
}

// SendDirectMessageRequest represents send direct message request.
// Exactly one of ConversationId and RecipientId must be set.
type SendDirectMessageRequest struct {
	ConversationId string `json:"conversationId" validate:"omitempty,max=36"`
	RecipientId    string `json:"recipientId" validate:"omitempty,max=36"`
	Content        string `json:"content" validate:"max=5000"`
	ImgUrl         string `json:"imgUrl" validate:"max=1024"`
}

// imgUrls checks image urls once they are trimmed
var imgUrls = validator.New()

// NewMessageEvent is the payload of the new-message event
type NewMessageEvent struct {
	Message      *entity.MessageInfo      `json:"message"`
	Conversation *entity.ConversationInfo `json:"conversation"`
	UnreadCounts map[string]int           `json:"unreadCounts"`
}

// SendDirectMessage stores a message in an existing conversation or in the
// conversation with a recipient, creating that conversation on first contact.
// Every write happens in one transaction.
func (s *MessageService) SendDirectMessage(ctx context.Context, senderId string, req *SendDirectMessageRequest) (*entity.SendResult, error) {
	if (req.ConversationId == "") == (req.RecipientId == "") {
		return nil, errcode.ErrTargetAmbiguous
	}
	body, ok := entity.MessageBody{Content: req.Content, ImgUrl: req.ImgUrl}.Normalize()
	if !ok {
		return nil, errcode.ErrMessageEmpty
	}
	if err := imgUrls.Var(body.ImgUrl, "omitempty,url"); err != nil {
		return nil, errcode.ErrInvalidParam.WithMsg("imgUrl failed on url").Wrap(err)
	}
	if req.RecipientId == senderId {
		return nil, errcode.ErrSelfConversation
	}

	var (
		msg         *entity.Message
		conv        *entity.Conversation
		recipientId string
		created     bool
	)
	err := s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		convId := req.ConversationId
		if convId == "" {
			pair, err := resolvePair(ctx, s.userRepo, tx, senderId, req.RecipientId)
			if err != nil {
				return err
			}
			convId, created, err = ensureConversation(ctx, s.convRepo, s.memberRepo, tx, pair)
			if err != nil {
				return err
			}
		}

		// the row lock serializes senders of one conversation, which keeps
		// created_at strictly increasing within it
		locked, err := s.convRepo.LockById(ctx, tx, convId)
		if err != nil {
			return err
		}
		if locked == nil {
			return errcode.ErrConvNotFound
		}
		member, err := s.memberRepo.Get(ctx, tx, convId, senderId)
		if err != nil {
			return err
		}
		if member == nil {
			return errcode.ErrNotConvMember
		}
		recipientId = locked.Pair().Other(senderId)

		id, err := idgen.NextID()
		if err != nil {
			return err
		}
		msg = &entity.Message{
			Id:             id,
			ConversationId: convId,
			SenderId:       senderId,
			Content:        entity.StrPtr(body.Content),
			ImgUrl:         entity.StrPtr(body.ImgUrl),
			CreatedAt:      nextMessageTime(locked.LastMessageAt),
		}
		if err := s.msgRepo.Create(ctx, tx, msg); err != nil {
			return err
		}
		if err := s.convRepo.SetLastMessage(ctx, tx, msg); err != nil {
			return err
		}
		if err := s.memberRepo.IncrementUnread(ctx, tx, convId, senderId, msg.CreatedAt); err != nil {
			return err
		}
		if err := s.memberRepo.MarkSeen(ctx, tx, convId, senderId, msg.Id, msg.CreatedAt); err != nil {
			return err
		}

		conv, err = s.convRepo.GetWithProfiles(ctx, tx, convId)
		return err
	})
	if err != nil {
		return nil, mapTxError(ctx, "send direct message", err, errcode.ErrSendFailed)
	}

	info := conv.ToConversationInfo()
	result := &entity.SendResult{
		Message:      msg.ToMessageInfo(),
		Conversation: info,
		UnreadCounts: info.UnreadCounts,
		Created:      created,
	}

	room := constant.ConversationRoom(conv.Id)
	if created {
		s.join(senderId, room)
		s.join(recipientId, room)
	}
	s.emit(room, constant.EventNewMessage, &NewMessageEvent{
		Message:      result.Message,
		Conversation: info,
		UnreadCounts: result.UnreadCounts,
	})
	if created {
		s.emit(constant.UserRoom(recipientId), constant.EventNewConversation, info)
	}

	log.CtxInfo(ctx, "direct message sent: id=%s, conversation_id=%s, sender_id=%s, created=%t", msg.Id, conv.Id, senderId, created)
	return result, nil
}

// nextMessageTime returns now, bumped past the previous message when the
// clock has not moved on
func nextMessageTime(last *time.Time) time.Time {
	now := entity.Now()
	if last != nil && !now.After(*last) {
		return last.Add(time.Millisecond)
	}
	return now
}

// GetMessages returns one page of a conversation's history in reading order.
// cursor is the nextCursor of the previous page; an unparseable cursor is
// treated as absent.
func (s *MessageService) GetMessages(ctx context.Context, conversationId, userId string, limit int, cursor string) (*entity.MessagePage, error) {
	if limit <= 0 {
		limit = constant.DefaultMessageLimit
	}
	if limit > constant.MaxMessageLimit {
		limit = constant.MaxMessageLimit
	}

	conv, err := s.convRepo.GetById(ctx, nil, conversationId)
	if err != nil {
		log.CtxError(ctx, "get conversation failed: id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrPullFailed.Wrap(err)
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	member, err := s.memberRepo.Get(ctx, nil, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check membership failed: id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrPullFailed.Wrap(err)
	}
	if member == nil {
		return nil, errcode.ErrNotConvMember
	}

	var before *time.Time
	if t, ok := entity.ParseCursor(cursor); ok {
		before = &t
	}

	// one extra row tells whether an older page exists
	rows, err := s.msgRepo.ListBefore(ctx, conversationId, before, limit+1)
	if err != nil {
		log.CtxError(ctx, "list messages failed: id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrPullFailed.Wrap(err)
	}

	page := &entity.MessagePage{Messages: make([]*entity.MessageInfo, 0, limit)}
	if len(rows) > limit {
		rows = rows[:limit]
		next := entity.FormatCursor(rows[len(rows)-1].CreatedAt)
		page.NextCursor = &next
	}
	for i := len(rows) - 1; i >= 0; i-- {
		page.Messages = append(page.Messages, rows[i].ToMessageInfo())
	}
	return page, nil
}
