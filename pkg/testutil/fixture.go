package testutil

import (
	"context"
	"time"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/dateutil"
)

// Fixture records every test can rely on. Group1 gates joins on an active
// subscription, Group2 does not.
var (
	Admin   = entity.User{Base: entity.Base{ID: "admin"}, Name: "Admin", Role: entity.RoleAdmin}
	Owner1  = entity.User{Base: entity.Base{ID: "owner1"}, Name: "Owner One", Role: entity.RoleUser}
	Member1 = entity.User{Base: entity.Base{ID: "member1"}, Name: "Member One", Role: entity.RoleUser}
	Member2 = entity.User{Base: entity.Base{ID: "member2"}, Name: "Member Two", Role: entity.RoleUser}
	Member3 = entity.User{Base: entity.Base{ID: "member3"}, Name: "Member Three", Role: entity.RoleUser}

	Group1 = entity.Group{
		Base:                 entity.Base{ID: "group1"},
		Name:                 "Gated Group",
		RequiresSubscription: true,
		Active:               true,
	}
	Group2 = entity.Group{
		Base:                 entity.Base{ID: "group2"},
		Name:                 "Open Group",
		RequiresSubscription: false,
		Active:               true,
	}

	Group1Owner = entity.GroupAdmin{
		Base:            entity.Base{ID: "group1-owner1"},
		GroupID:         Group1.ID,
		UserID:          Owner1.ID,
		PermissionLevel: 1,
	}

	// Member1 has a live subscription of Group1, Member2 a lapsed one.
	Member1Subscription = entity.Subscription{
		Base:       entity.Base{ID: "sub-member1-group1"},
		UserID:     Member1.ID,
		GroupID:    Group1.ID,
		StartDate:  dateutil.StartOfDay(time.Now().AddDate(0, -1, 0)),
		EndDate:    dateutil.StartOfDay(time.Now().AddDate(0, 0, 10)),
		AmountPaid: 30,
		Status:     entity.SubscriptionActive,
	}
	Member2Subscription = entity.Subscription{
		Base:       entity.Base{ID: "sub-member2-group1"},
		UserID:     Member2.ID,
		GroupID:    Group1.ID,
		StartDate:  dateutil.StartOfDay(time.Now().AddDate(0, -2, 0)),
		EndDate:    dateutil.StartOfDay(time.Now().AddDate(0, -1, 0)),
		AmountPaid: 30,
		Status:     entity.SubscriptionActive,
	}
)

func InsertFixtures(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range []entity.User{Admin, Owner1, Member1, Member2, Member3} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}

	groupRepo := repository.NewGroupRepository()
	for _, group := range []entity.Group{Group1, Group2} {
		group := group
		if err := groupRepo.Create(ctx, &group); err != nil {
			panic(err)
		}
	}

	groupAdminRepo := repository.NewGroupAdminRepository()
	admin := Group1Owner
	if err := groupAdminRepo.Create(ctx, &admin); err != nil {
		panic(err)
	}

	subscriptionRepo := repository.NewSubscriptionRepository()
	for _, sub := range []entity.Subscription{Member1Subscription, Member2Subscription} {
		sub := sub
		if err := subscriptionRepo.Create(ctx, &sub); err != nil {
			panic(err)
		}
	}
}

// SampleRaffle creates an open raffle of the given group.
func SampleRaffle(ctx context.Context, groupID string) *entity.Raffle {
	raffle := &entity.Raffle{
		Base:       entity.Base{ID: "raffle-" + groupID},
		GroupID:    groupID,
		NumWinners: 1,
		Prize:      "Monthly prize",
		Status:     entity.RaffleOpen,
	}

	if err := repository.NewRaffleRepository().Create(ctx, raffle); err != nil {
		panic(err)
	}

	return raffle
}
