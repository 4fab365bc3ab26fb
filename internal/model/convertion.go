package model

import "github.com/raffleclub/backend/internal/entity"

func ConvertRaffle(raffle *entity.Raffle) Raffle {
	return Raffle{
		ID:               raffle.ID,
		GroupID:          raffle.GroupID,
		NumWinners:       raffle.NumWinners,
		Prize:            raffle.Prize,
		Status:           string(raffle.Status),
		ParticipantCount: raffle.ParticipantCount,
		CreatedAt:        raffle.CreatedAt,
		PerformedAt:      raffle.PerformedAt,
	}
}

func ConvertSubscription(sub *entity.Subscription) Subscription {
	return Subscription{
		UserID:        sub.UserID,
		GroupID:       sub.GroupID,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		AmountPaid:    sub.AmountPaid,
		Status:        string(sub.Status),
		PaymentMethod: sub.PaymentMethod,
		ReceiptURL:    sub.ReceiptURL,
	}
}
