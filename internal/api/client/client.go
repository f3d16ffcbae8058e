package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/api/shared/constants"
	"github.com/feral-file/ff-fractions/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-fractions/internal/api/shared/errors"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/sweeper"
)

var _ sweeper.Settler = (*Client)(nil)

// Client calls the fractions REST API with an API key.
// Protocol rejections come back as the matching domain errors.
type Client struct {
	baseURL string
	apiKey  string
	http    adapter.HTTPClient
}

// New creates a REST API client
func New(baseURL, apiKey string, httpClient adapter.HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *Client) header(caller *common.Address) http.Header {
	h := http.Header{}
	h.Set("Authorization", "ApiKey "+c.apiKey)
	if caller != nil {
		h.Set(constants.CALLER_ADDRESS_HEADER, caller.Hex())
	}
	return h
}

// translate turns a protocol rejection returned by the API back into its domain error
func translate(op string, err error) error {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		var apiErr apierrors.APIError
		if json.Unmarshal(statusErr.Body, &apiErr) == nil {
			if domainErr, ok := apierrors.ToDomainError(&apiErr); ok {
				return domainErr
			}
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// ListSettleableSales lists closed successful sales whose seller proceeds are still escrowed
func (c *Client) ListSettleableSales(ctx context.Context, limit int) ([]*domain.Sale, error) {
	u := fmt.Sprintf("%s/api/v1/sales/settleable?%s", c.baseURL, url.Values{
		"limit": []string{strconv.Itoa(limit)},
	}.Encode())

	var resp dto.SettleableSalesResponse
	if err := c.http.Get(ctx, u, c.header(nil), &resp); err != nil {
		return nil, translate("list settleable sales", err)
	}

	sales := make([]*domain.Sale, 0, len(resp.Sales))
	for _, r := range resp.Sales {
		s, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode sale %d: %w", r.ID, err)
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// ReleaseSeller pays the seller proceeds of a timed escrow, acting as caller
func (c *Client) ReleaseSeller(ctx context.Context, caller, escrowAddress common.Address) (*escrow.SellerReleaseResult, error) {
	u := fmt.Sprintf("%s/api/v1/escrows/%s/release-seller", c.baseURL, escrowAddress.Hex())

	var resp dto.SellerReleaseResponse
	if err := c.http.Post(ctx, u, c.header(&caller), nil, &resp); err != nil {
		return nil, translate("release seller", err)
	}

	result, err := resp.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode seller release: %w", err)
	}
	return result, nil
}
