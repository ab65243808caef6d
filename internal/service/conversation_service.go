package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/mbeoliero/parley/pkg/metrics"
	"gorm.io/gorm"
)

// ConversationService handles conversations and their membership
type ConversationService struct {
	convRepo     *repository.ConversationRepo
	userRepo     *repository.UserRepo
	msgRepo      *repository.MessageRepo
	reactionRepo *repository.ReactionRepo
	typingRepo   *repository.TypingRepo
	repos        *repository.Repositories
	identity     *IdentityResolver
	opts         options
}

// NewConversationService creates a new ConversationService
func NewConversationService(repos *repository.Repositories, identity *IdentityResolver, opts ...Option) *ConversationService {
	return &ConversationService{
		convRepo:     repos.Conversation,
		userRepo:     repos.User,
		msgRepo:      repos.Message,
		reactionRepo: repos.Reaction,
		typingRepo:   repos.Typing,
		repos:        repos,
		identity:     identity,
		opts:         newOptions(opts),
	}
}

// CreateConversationRequest represents conversation creation request
type CreateConversationRequest struct {
	ParticipantIds []entity.UserId `json:"participant_ids"`
	IsGroup        bool            `json:"is_group"`
	Name           string          `json:"name,omitempty"`
}

// Create dispatches to CreateGroup, or to CreateOrGetDirect when the request names exactly one other user
func (s *ConversationService) Create(ctx context.Context, principal string, req *CreateConversationRequest) (entity.ConversationId, error) {
	if req.IsGroup {
		return s.CreateGroup(ctx, principal, req.Name, req.ParticipantIds)
	}

	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return "", err
	}
	others := otherParticipants(me.Id, req.ParticipantIds)
	if len(others) != 1 {
		return "", errcode.ErrInvalidParam.Wrap(fmt.Errorf("direct conversation needs exactly one other participant, got %d", len(others)))
	}
	return s.createOrGetDirect(ctx, me, others[0])
}

// CreateOrGetDirect returns the caller's direct conversation with otherUserId, creating it on first use
func (s *ConversationService) CreateOrGetDirect(ctx context.Context, principal string, otherUserId entity.UserId) (entity.ConversationId, error) {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return "", err
	}
	return s.createOrGetDirect(ctx, me, otherUserId)
}

func (s *ConversationService) createOrGetDirect(ctx context.Context, me *entity.User, otherUserId entity.UserId) (entity.ConversationId, error) {
	if otherUserId == "" {
		return "", errcode.ErrInvalidParam
	}
	if otherUserId == me.Id {
		return "", errcode.ErrSelfDirect
	}

	// the lock narrows, but cannot close, the window for two concurrent creations of the same pair
	release, acquired, err := s.convRepo.LockDirectPair(ctx, me.Id, otherUserId, s.opts.lockWait)
	defer release()
	if err != nil {
		log.CtxWarn(ctx, "direct pair lock unavailable, continuing unlocked: user_a=%s, user_b=%s, error=%v", me.Id, otherUserId, err)
	} else if !acquired {
		log.CtxWarn(ctx, "direct pair lock wait expired, continuing unlocked: user_a=%s, user_b=%s", me.Id, otherUserId)
	}

	var (
		convId entity.ConversationId
		reused bool
	)
	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		other, err := s.userRepo.GetByIdWithTx(ctx, tx, otherUserId)
		if err != nil {
			return err
		}
		if other == nil {
			return errcode.ErrUserNotFound
		}

		existing, err := s.convRepo.FindDirectWithTx(ctx, tx, me.Id, otherUserId)
		if err != nil {
			return err
		}
		if existing != nil {
			convId, reused = existing.Id, true
			return nil
		}

		conv, err := s.createWithMembers(ctx, tx, &entity.Conversation{IsGroup: false}, []entity.UserId{me.Id, otherUserId})
		if err != nil {
			return err
		}
		convId = conv.Id
		return nil
	})
	if err != nil {
		return "", txError(ctx, "create direct conversation", err)
	}

	if reused {
		metrics.ConversationsCreated.WithLabelValues(metrics.KindReused).Inc()
	} else {
		metrics.ConversationsCreated.WithLabelValues(metrics.KindDirect).Inc()
		log.CtxInfo(ctx, "direct conversation created: conversation_id=%s, user_a=%s, user_b=%s", convId, me.Id, otherUserId)
	}
	return convId, nil
}

// CreateGroup creates a group administered by the caller. The caller is always a member;
// duplicate participant ids are collapsed.
func (s *ConversationService) CreateGroup(ctx context.Context, principal, name string, participantIds []entity.UserId) (entity.ConversationId, error) {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errcode.ErrGroupNameEmpty
	}

	others := otherParticipants(me.Id, participantIds)
	var conv *entity.Conversation
	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		if len(others) > 0 {
			found, err := s.userRepo.CountByIdsWithTx(ctx, tx, others)
			if err != nil {
				return err
			}
			if found != int64(len(others)) {
				return errcode.ErrUserNotFound
			}
		}

		adminId := me.Id
		conv, err = s.createWithMembers(ctx, tx, &entity.Conversation{
			IsGroup: true,
			Name:    &name,
			AdminId: &adminId,
		}, append([]entity.UserId{me.Id}, others...))
		return err
	})
	if err != nil {
		return "", txError(ctx, "create group", err)
	}

	metrics.ConversationsCreated.WithLabelValues(metrics.KindGroup).Inc()
	log.CtxInfo(ctx, "group created: conversation_id=%s, admin_id=%s, members=%d", conv.Id, me.Id, len(others)+1)
	return conv.Id, nil
}

func (s *ConversationService) createWithMembers(ctx context.Context, tx *gorm.DB, conv *entity.Conversation, userIds []entity.UserId) (*entity.Conversation, error) {
	id, err := entity.NewId[entity.ConversationId]()
	if err != nil {
		return nil, err
	}
	now := s.opts.now()
	conv.Id = id
	conv.CreatedAt = now
	if err := s.convRepo.CreateWithTx(ctx, tx, conv); err != nil {
		return nil, err
	}

	members := make([]*entity.ConversationMember, 0, len(userIds))
	for _, userId := range userIds {
		member, err := newMember(id, userId, now)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := s.convRepo.AddMembersWithTx(ctx, tx, members); err != nil {
		return nil, err
	}
	return conv, nil
}

func newMember(convId entity.ConversationId, userId entity.UserId, joinedAt int64) (*entity.ConversationMember, error) {
	id, err := entity.NewId[entity.MemberId]()
	if err != nil {
		return nil, err
	}
	return &entity.ConversationMember{
		Id:             id,
		ConversationId: convId,
		UserId:         userId,
		JoinedAt:       joinedAt,
	}, nil
}

// otherParticipants returns ids without self, duplicates or blanks, in first-seen order
func otherParticipants(self entity.UserId, ids []entity.UserId) []entity.UserId {
	seen := map[entity.UserId]bool{self: true}
	others := make([]entity.UserId, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		others = append(others, id)
	}
	return others
}

// List returns the caller's conversations, most recent activity first
func (s *ConversationService) List(ctx context.Context, principal string) ([]*entity.ConversationSummary, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.ConversationSummary{}, nil
	}

	memberships, err := s.convRepo.ListMembershipsByUser(ctx, me.Id)
	if err != nil {
		return nil, internalError(ctx, "list memberships", err)
	}
	convIds := make([]entity.ConversationId, 0, len(memberships))
	for _, m := range memberships {
		convIds = append(convIds, m.ConversationId)
	}
	convs, err := s.convRepo.GetByIds(ctx, convIds)
	if err != nil {
		return nil, internalError(ctx, "get conversations", err)
	}

	result := make([]*entity.ConversationSummary, 0, len(memberships))
	for _, membership := range memberships {
		conv := convs[membership.ConversationId]
		if conv == nil {
			continue
		}
		summary, err := s.summarize(ctx, me, membership, conv)
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ActivityAt() > result[j].ActivityAt()
	})
	return result, nil
}

// Get returns one conversation as seen by the caller.
// A missing conversation and one the caller does not belong to are both ErrConvNotFound.
func (s *ConversationService) Get(ctx context.Context, principal string, convId entity.ConversationId) (*entity.ConversationSummary, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil || me == nil {
		return nil, err
	}

	conv, err := s.convRepo.GetById(ctx, convId)
	if err != nil {
		return nil, internalError(ctx, "get conversation", err)
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	membership, err := s.convRepo.GetMember(ctx, convId, me.Id)
	if err != nil {
		return nil, internalError(ctx, "get membership", err)
	}
	if membership == nil {
		return nil, errcode.ErrConvNotFound
	}
	return s.summarize(ctx, me, membership, conv)
}

func (s *ConversationService) summarize(ctx context.Context, me *entity.User, membership *entity.ConversationMember, conv *entity.Conversation) (*entity.ConversationSummary, error) {
	members, err := s.convRepo.ListMembers(ctx, conv.Id)
	if err != nil {
		return nil, internalError(ctx, "list members", err)
	}
	lastMessage, err := s.msgRepo.GetLatest(ctx, conv.Id)
	if err != nil {
		return nil, internalError(ctx, "get last message", err)
	}
	unread, err := s.unreadCount(ctx, me.Id, membership)
	if err != nil {
		return nil, err
	}

	summary := &entity.ConversationSummary{
		Id:          conv.Id,
		IsGroup:     conv.IsGroup,
		Name:        conv.Name,
		AdminId:     conv.AdminId,
		CreatedAt:   conv.CreatedAt,
		LastMessage: lastMessage,
		UnreadCount: unread,
		MemberCount: int64(len(members)),
	}

	if !conv.IsGroup {
		for _, m := range members {
			if m.UserId == me.Id {
				continue
			}
			other, err := s.userRepo.GetById(ctx, m.UserId)
			if err != nil {
				return nil, internalError(ctx, "get other user", err)
			}
			summary.OtherUser = other.ToUserInfo()
			break
		}
	}
	return summary, nil
}

// unreadCount counts messages from others after the member's last seen message.
// A last seen pointer that no longer resolves counts as nothing unread.
func (s *ConversationService) unreadCount(ctx context.Context, userId entity.UserId, membership *entity.ConversationMember) (int64, error) {
	var since *int64
	if membership.LastSeenMessageId != nil {
		lastSeen, err := s.msgRepo.GetById(ctx, *membership.LastSeenMessageId)
		if err != nil {
			return 0, internalError(ctx, "get last seen message", err)
		}
		if lastSeen == nil {
			return 0, nil
		}
		since = &lastSeen.CreatedAt
	}

	count, err := s.msgRepo.CountUnread(ctx, membership.ConversationId, userId, since)
	if err != nil {
		return 0, internalError(ctx, "count unread", err)
	}
	return count, nil
}

// ListMembers returns the users of a conversation in join order
func (s *ConversationService) ListMembers(ctx context.Context, principal string, convId entity.ConversationId) ([]*entity.UserInfo, error) {
	me, err := s.identity.Lookup(ctx, principal)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return []*entity.UserInfo{}, nil
	}

	users, err := s.userRepo.ListByConversation(ctx, convId)
	if err != nil {
		return nil, internalError(ctx, "list conversation users", err)
	}
	return entity.ToUserInfos(users), nil
}

// MarkAsRead moves the caller's read marker to the newest message.
// Not being a member, or an empty conversation, is a no-op.
func (s *ConversationService) MarkAsRead(ctx context.Context, principal string, convId entity.ConversationId) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}

	membership, err := s.convRepo.GetMember(ctx, convId, me.Id)
	if err != nil {
		return internalError(ctx, "get membership", err)
	}
	if membership == nil {
		return nil
	}
	latest, err := s.msgRepo.GetLatest(ctx, convId)
	if err != nil {
		return internalError(ctx, "get last message", err)
	}
	if latest == nil {
		return nil
	}
	if err := s.convRepo.UpdateLastSeen(ctx, membership.Id, latest.Id); err != nil {
		return internalError(ctx, "update last seen", err)
	}
	return nil
}

// Delete removes a conversation with its reactions, messages, typing entries and memberships
// in one transaction. Only members may delete.
func (s *ConversationService) Delete(ctx context.Context, principal string, convId entity.ConversationId) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		conv, err := s.convRepo.GetByIdWithTx(ctx, tx, convId)
		if err != nil {
			return err
		}
		if conv == nil {
			return errcode.ErrConvNotFound
		}
		membership, err := s.convRepo.GetMemberWithTx(ctx, tx, convId, me.Id)
		if err != nil {
			return err
		}
		if membership == nil {
			return errcode.ErrNotMember
		}

		if err := s.reactionRepo.DeleteByConversationWithTx(ctx, tx, convId); err != nil {
			return err
		}
		if err := s.msgRepo.DeleteByConversationWithTx(ctx, tx, convId); err != nil {
			return err
		}
		if err := s.typingRepo.DeleteByConversationWithTx(ctx, tx, convId); err != nil {
			return err
		}
		if err := s.convRepo.DeleteMembersWithTx(ctx, tx, convId); err != nil {
			return err
		}
		return s.convRepo.DeleteWithTx(ctx, tx, convId)
	})
	if err != nil {
		return txError(ctx, "delete conversation", err)
	}

	metrics.ConversationsDeleted.Inc()
	log.CtxInfo(ctx, "conversation deleted: conversation_id=%s, user_id=%s", convId, me.Id)
	return nil
}

// AddMember adds userId to a group and posts a system message announcing it. Only the admin may add.
func (s *ConversationService) AddMember(ctx context.Context, principal string, convId entity.ConversationId, userId entity.UserId) error {
	me, err := s.identity.Resolve(ctx, principal)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		conv, err := s.convRepo.GetByIdWithTx(ctx, tx, convId)
		if err != nil {
			return err
		}
		if conv == nil {
			return errcode.ErrConvNotFound
		}
		if !conv.IsGroup {
			return errcode.ErrNotGroup
		}
		if !conv.IsAdmin(me.Id) {
			return errcode.ErrNotAdmin
		}

		added, err := s.userRepo.GetByIdWithTx(ctx, tx, userId)
		if err != nil {
			return err
		}
		if added == nil {
			return errcode.ErrUserNotFound
		}
		existing, err := s.convRepo.GetMemberWithTx(ctx, tx, convId, userId)
		if err != nil {
			return err
		}
		if existing != nil {
			return errcode.ErrAlreadyMember
		}

		now := s.opts.now()
		member, err := newMember(convId, userId, now)
		if err != nil {
			return err
		}
		if err := s.convRepo.AddMembersWithTx(ctx, tx, []*entity.ConversationMember{member}); err != nil {
			return err
		}

		msgId, err := entity.NewId[entity.MessageId]()
		if err != nil {
			return err
		}
		return s.msgRepo.CreateWithTx(ctx, tx, &entity.Message{
			Id:             msgId,
			ConversationId: convId,
			SenderId:       me.Id,
			Content:        memberAddedText(added.Name, me.Name),
			Type:           entity.MessageTypeSystem,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return txError(ctx, "add group member", err)
	}

	metrics.MessagesSent.WithLabelValues(string(entity.MessageTypeSystem)).Inc()
	log.CtxInfo(ctx, "group member added: conversation_id=%s, user_id=%s, by=%s", convId, userId, me.Id)
	return nil
}

func memberAddedText(addedName, adminName string) string {
	if addedName == "" {
		addedName = constant.UnknownMemberName
	}
	return fmt.Sprintf("%s was added by %s.", addedName, adminName)
}
