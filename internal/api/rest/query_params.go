package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-fractions/internal/api/shared/constants"
	"github.com/feral-file/ff-fractions/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-fractions/internal/api/shared/errors"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/store"
)

// ListSalesQueryParams holds query parameters for GET /sales
type ListSalesQueryParams struct {
	// Filters
	Initiator string `form:"initiator"`
	Status    string `form:"status"`

	// Pagination
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ParseListSalesQuery parses query parameters for GET /sales
func ParseListSalesQuery(c *gin.Context) (*ListSalesQueryParams, error) {
	var params ListSalesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limit
	if params.Limit <= 0 {
		params.Limit = constants.DEFAULT_SALES_LIMIT
	}
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}

	return &params, nil
}

// ToFilter validates the filters and converts them to a store filter
func (p *ListSalesQueryParams) ToFilter() (store.SaleQueryFilter, error) {
	filter := store.SaleQueryFilter{
		Limit:  p.Limit,
		Offset: p.Offset,
	}

	if p.Initiator != "" {
		initiator, err := dto.ParseAddress("initiator", p.Initiator)
		if err != nil {
			return store.SaleQueryFilter{}, err
		}
		filter.Initiator = &initiator
	}

	if p.Status != "" {
		status := domain.SaleStatus(p.Status)
		if !domain.IsValidSaleStatus(status) {
			return store.SaleQueryFilter{}, apierrors.NewValidationError(fmt.Sprintf("invalid status: %s", p.Status))
		}
		filter.Status = &status
	}

	return filter, nil
}

// GetNotificationsQueryParams holds query parameters for GET /notifications
type GetNotificationsQueryParams struct {
	Anchor *uint64 `form:"anchor"` // Only notifications with a greater cursor are returned
	Limit  int     `form:"limit,default=50"`
}

// ParseGetNotificationsQuery parses query parameters for GET /notifications
func ParseGetNotificationsQuery(c *gin.Context) (*GetNotificationsQueryParams, error) {
	var params GetNotificationsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limit
	if params.Limit <= 0 {
		params.Limit = constants.DEFAULT_NOTIFICATIONS_LIMIT
	}
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}

	return &params, nil
}

// ListSettleableSalesQueryParams holds query parameters for GET /sales/settleable
type ListSettleableSalesQueryParams struct {
	Limit int `form:"limit,default=100"`
}

// ParseListSettleableSalesQuery parses query parameters for GET /sales/settleable
func ParseListSettleableSalesQuery(c *gin.Context) (*ListSettleableSalesQueryParams, error) {
	var params ListSettleableSalesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit <= 0 {
		params.Limit = constants.DEFAULT_SETTLEABLE_SALES_LIMIT
	}
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}

	return &params, nil
}
