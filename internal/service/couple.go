package service

import (
	"context"
	"errors"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/sirupsen/logrus"
)

// CoupleStatus 汇总配对的只读状态：配对本身、对方成员以及对方是否在线。
// 配对的建立由外部流程完成，这里只消费已有的配对关系。
type CoupleStatus struct {
	Couple        *domain.Couple `json:"couple"`
	Partner       *domain.User   `json:"partner"`
	PartnerOnline bool           `json:"partnerOnline"`
}

// CoupleService 负责配对状态的查询。
type CoupleService struct {
	coupleRepo repository.CoupleRepository
	userRepo   repository.UserRepository
	presence   repository.PresenceRepository
}

// NewCoupleService 创建 CoupleService 实例。
func NewCoupleService(coupleRepo repository.CoupleRepository, userRepo repository.UserRepository, presence repository.PresenceRepository) *CoupleService {
	if coupleRepo == nil {
		panic("CoupleRepository cannot be nil for CoupleService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for CoupleService")
	}
	if presence == nil {
		panic("PresenceRepository cannot be nil for CoupleService")
	}
	return &CoupleService{coupleRepo: coupleRepo, userRepo: userRepo, presence: presence}
}

// Status 返回当前用户所在配对的状态。
// 尚未配对的用户返回 ErrNotPaired；配对存在但对方账号缺失时 Partner 为 nil。
func (s *CoupleService) Status(ctx context.Context, coupleID, userID string) (*CoupleStatus, error) {
	if coupleID == "" {
		return nil, ErrNotPaired
	}

	couple, err := s.coupleRepo.FindByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, repository.ErrCoupleNotFound) {
			return nil, ErrNotPaired
		}
		logrus.WithField("couple_id", coupleID).WithError(err).Error("Database error during couple lookup")
		return nil, ErrInternalServer
	}

	status := &CoupleStatus{Couple: couple}

	partner, err := s.userRepo.FindPartner(ctx, coupleID, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logrus.WithField("couple_id", coupleID).WithError(err).Error("Database error during partner lookup")
			return nil, ErrInternalServer
		}
		// 配对里只剩自己，仍返回配对本身
		return status, nil
	}
	partner.Password = ""
	status.Partner = partner

	online, err := s.presence.PartnerOnline(ctx, coupleID, userID)
	if err != nil {
		// 在线状态是尽力而为的信息，查询失败不影响主结果
		logrus.WithField("couple_id", coupleID).WithError(err).Warn("Presence lookup failed")
		return status, nil
	}
	status.PartnerOnline = online

	return status, nil
}
