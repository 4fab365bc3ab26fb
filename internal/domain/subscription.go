package domain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/dateutil"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/storage"
	"github.com/raffleclub/backend/pkg/telegram"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SubscriptionDomain interface {
	Register(context.Context, *model.RegisterSubscriptionRequest) (*model.RegisterSubscriptionResponse, error)
	Get(context.Context, *model.GetSubscriptionRequest) (*model.GetSubscriptionResponse, error)
	GetList(context.Context, *model.GetSubscriptionsRequest) (*model.GetSubscriptionsResponse, error)
	Cancel(context.Context, *model.CancelSubscriptionRequest) (*model.CancelSubscriptionResponse, error)
}

type subscriptionDomain struct {
	subscriptionRepo repository.SubscriptionRepository
	groupRepo        repository.GroupRepository
	roleVerifier     *common.GroupRoleVerifier
	storage          storage.Storage
	deliveryCaller   telegram.Caller

	now func() time.Time
}

func NewSubscriptionDomain(
	subscriptionRepo repository.SubscriptionRepository,
	groupRepo repository.GroupRepository,
	roleVerifier *common.GroupRoleVerifier,
	storage storage.Storage,
	deliveryCaller telegram.Caller,
) *subscriptionDomain {
	return &subscriptionDomain{
		subscriptionRepo: subscriptionRepo,
		groupRepo:        groupRepo,
		roleVerifier:     roleVerifier,
		storage:          storage,
		deliveryCaller:   deliveryCaller,
		now:              time.Now,
	}
}

// WithClock overrides the domain's clock. Tests use it to pin today.
func (d *subscriptionDomain) WithClock(now func() time.Time) *subscriptionDomain {
	d.now = now
	return d
}

func (d *subscriptionDomain) Register(
	ctx context.Context, req *model.RegisterSubscriptionRequest,
) (*model.RegisterSubscriptionResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "The paid amount must be a positive number")
	}

	group, err := d.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get group: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, group.ID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only administrators can register payments")
	}

	startDate, endDate, err := d.resolvePeriod(req)
	if err != nil {
		return nil, err
	}

	receiptURL := ""
	if req.ReceiptData != "" {
		receiptURL, err = d.uploadReceipt(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	payment := &entity.Subscription{
		Base:          entity.Base{ID: uuid.NewString()},
		UserID:        req.UserID,
		GroupID:       group.ID,
		StartDate:     startDate,
		EndDate:       endDate,
		AmountPaid:    req.Amount,
		Status:        entity.SubscriptionActive,
		PaymentMethod: req.PaymentMethod,
		ReceiptURL:    receiptURL,
	}

	existing, err := d.subscriptionRepo.Get(ctx, req.UserID, group.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get subscription of %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	current := payment
	if existing == nil {
		if err := d.subscriptionRepo.Create(ctx, payment); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create subscription of %s: %v", req.UserID, err)
			return nil, errorx.Unknown
		}
	} else {
		current, err = d.subscriptionRepo.Renew(ctx, existing, payment, d.now())
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot renew subscription of %s: %v", req.UserID, err)
			return nil, errorx.Unknown
		}
	}

	message := fmt.Sprintf("Payment received. Your subscription of %s runs until %s.",
		group.Name, current.EndDate.Format("02/01/2006"))
	if err := d.deliveryCaller.SendDirectMessage(ctx, req.UserID, message); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send payment confirmation to %s: %v", req.UserID, err)
	}

	xcontext.Logger(ctx).Infof("Subscription of %s in group %s runs until %s",
		req.UserID, group.ID, current.EndDate.Format(time.DateOnly))

	return &model.RegisterSubscriptionResponse{
		Subscription: model.ConvertSubscription(current),
	}, nil
}

// resolvePeriod determines the covered period. Both dates must be given
// together; when omitted the period starts today, except near the end of
// the month where it snaps to the first of the next month so every period
// keeps a same-numbered renewal day.
func (d *subscriptionDomain) resolvePeriod(
	req *model.RegisterSubscriptionRequest,
) (time.Time, time.Time, error) {
	if req.StartDate != nil || req.EndDate != nil {
		if req.StartDate == nil || req.EndDate == nil {
			return time.Time{}, time.Time{}, errorx.New(errorx.BadRequest,
				"The start date and the end date must be given together")
		}

		if !req.EndDate.After(*req.StartDate) {
			return time.Time{}, time.Time{}, errorx.New(errorx.BadRequest,
				"The end date must come after the start date")
		}

		return dateutil.StartOfDay(*req.StartDate), dateutil.StartOfDay(*req.EndDate), nil
	}

	start := dateutil.StartOfDay(d.now())
	if start.Day() >= 29 {
		start = time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, start.Location())
	}

	return start, dateutil.AddPeriod(start), nil
}

func (d *subscriptionDomain) uploadReceipt(
	ctx context.Context, req *model.RegisterSubscriptionRequest,
) (string, error) {
	data, err := base64.StdEncoding.DecodeString(req.ReceiptData)
	if err != nil {
		return "", errorx.New(errorx.BadRequest, "Cannot decode the receipt data")
	}

	resp, err := d.storage.Upload(ctx, &storage.UploadObject{
		Bucket:   xcontext.Configs(ctx).Storage.ReceiptBucket,
		Prefix:   "receipts",
		FileName: req.ReceiptFileName,
		Mime:     req.ReceiptMime,
		Data:     data,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload receipt of %s: %v", req.UserID, err)
		return "", errorx.New(errorx.Unavailable, "Cannot store the receipt, please retry")
	}

	return resp.Url, nil
}

func (d *subscriptionDomain) Get(
	ctx context.Context, req *model.GetSubscriptionRequest,
) (*model.GetSubscriptionResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	sub, err := d.subscriptionRepo.Get(ctx, userID, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "You have no subscription in this group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get subscription of %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return &model.GetSubscriptionResponse{
		Subscription:  model.ConvertSubscription(sub),
		DaysRemaining: dateutil.DaysUntil(d.now(), sub.EndDate),
	}, nil
}

func (d *subscriptionDomain) GetList(
	ctx context.Context, req *model.GetSubscriptionsRequest,
) (*model.GetSubscriptionsResponse, error) {
	if err := d.roleVerifier.Verify(ctx, req.GroupID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	subs, err := d.subscriptionRepo.GetByGroupID(ctx, req.GroupID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get subscriptions of group %s: %v", req.GroupID, err)
		return nil, errorx.Unknown
	}

	clientSubs := []model.Subscription{}
	for i := range subs {
		clientSubs = append(clientSubs, model.ConvertSubscription(&subs[i]))
	}

	return &model.GetSubscriptionsResponse{Subscriptions: clientSubs}, nil
}

func (d *subscriptionDomain) Cancel(
	ctx context.Context, req *model.CancelSubscriptionRequest,
) (*model.CancelSubscriptionResponse, error) {
	if err := d.roleVerifier.Verify(ctx, req.GroupID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only administrators can cancel subscriptions")
	}

	if _, err := d.subscriptionRepo.Get(ctx, req.UserID, req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found subscription")
		}

		xcontext.Logger(ctx).Errorf("Cannot get subscription of %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	if err := d.subscriptionRepo.Cancel(ctx, req.UserID, req.GroupID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cancel subscription of %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Subscription of %s in group %s cancelled", req.UserID, req.GroupID)
	return &model.CancelSubscriptionResponse{}, nil
}
