package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"example.com/storefront/internal/domain/money"
	domorder "example.com/storefront/internal/domain/order"
	domuser "example.com/storefront/internal/domain/user"
)

type confirmationDTO struct {
	ID     string          `json:"id"`
	Total  json.Number     `json:"total"`
	Status domorder.Status `json:"status"`
}

// Submitter posts orders to POST /orders/ with the buyer's bearer token.
type Submitter struct {
	c *Client
}

func (c *Client) Submitter() *Submitter {
	return &Submitter{c: c}
}

func (s *Submitter) Submit(ctx context.Context, d domorder.Draft) (*domorder.Confirmation, error) {
	if d.Token == "" {
		return nil, domuser.ErrNotAuthenticated
	}

	var dto confirmationDTO
	if err := s.c.do(ctx, http.MethodPost, "/orders/", d.Token, d, &dto); err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			return nil, domuser.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("%w: %w", domorder.ErrOrderSubmissionFailed, err)
	}
	if dto.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", domorder.ErrOrderSubmissionFailed)
	}

	c := &domorder.Confirmation{ID: dto.ID, Total: d.Total, Status: dto.Status}
	if dto.Total != "" {
		total, err := money.Parse(dto.Total.String())
		if err != nil {
			return nil, fmt.Errorf("%w: total: %v", domorder.ErrOrderSubmissionFailed, err)
		}
		c.Total = total
	}
	if c.Status == "" {
		c.Status = domorder.StatusConfirmed
	}
	return c, nil
}
