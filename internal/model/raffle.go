package model

import "time"

type Raffle struct {
	ID               string     `json:"id"`
	GroupID          string     `json:"group_id"`
	NumWinners       int        `json:"num_winners"`
	Prize            string     `json:"prize"`
	Status           string     `json:"status"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`
	PerformedAt      *time.Time `json:"performed_at,omitempty"`
}

type RaffleWinner struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type CreateRaffleRequest struct {
	GroupID    string `json:"group_id"`
	NumWinners int    `json:"num_winners"`
	Prize      string `json:"prize"`
}

type CreateRaffleResponse struct {
	ID string `json:"id"`
}

type GetRaffleRequest struct {
	ID string `json:"id" form:"id"`
}

type GetRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type GetRafflesRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
	Limit   int    `json:"limit" form:"limit"`
}

type GetRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type JoinRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
	Name     string `json:"name"`
}

type JoinRaffleResponse struct {
	ParticipantCount int `json:"participant_count"`
}

type DrawRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
}

type DrawRaffleResponse struct {
	Winners []RaffleWinner `json:"winners"`
}

type CancelRaffleRequest struct {
	RaffleID string `json:"raffle_id"`
}

type CancelRaffleResponse struct{}
