package rest

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/api/middleware"
	"github.com/feral-file/ff-fractions/internal/api/shared/dto"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/executor"
	"github.com/feral-file/ff-fractions/internal/store"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// SetupSale opens a fractional sale of an asset the caller owns
	// POST /api/v1/sales
	SetupSale(c *gin.Context)

	// ListSales retrieves sales with optional filters
	// GET /api/v1/sales?initiator=<address>&status=<status>&limit=<limit>&offset=<offset>
	ListSales(c *gin.Context)

	// ListSettleableSales retrieves closed successful sales whose seller proceeds are still escrowed
	// GET /api/v1/sales/settleable?limit=<limit>
	ListSettleableSales(c *gin.Context)

	// GetSale retrieves a sale with its derived state
	// GET /api/v1/sales/:id
	GetSale(c *gin.Context)

	// BuyFractions buys fractions of an open sale
	// POST /api/v1/sales/:id/purchases
	BuyFractions(c *gin.Context)

	// WithdrawFailedSaleNft returns the asset of a failed sale to its initiator
	// POST /api/v1/sales/:id/nft/withdraw
	WithdrawFailedSaleNft(c *gin.Context)

	// WithdrawFractionsKept sends the kept fractions of a successful sale to its initiator
	// POST /api/v1/sales/:id/fractions-kept/withdraw
	WithdrawFractionsKept(c *gin.Context)

	// RequestBuyout requests a buyout of a successful sale
	// POST /api/v1/sales/:id/buyouts
	RequestBuyout(c *gin.Context)

	// BuyoutUnsupervised takes the asset when the caller holds every fraction
	// POST /api/v1/sales/:id/buyouts/unsupervised
	BuyoutUnsupervised(c *gin.Context)

	// IsSaleSuccessful reports whether the sale reached its minimum
	// GET /api/v1/sales/:id/successful
	IsSaleSuccessful(c *gin.Context)

	// IsSaleOpen reports whether the sale accepts purchases
	// GET /api/v1/sales/:id/open
	IsSaleOpen(c *gin.Context)

	// IsTokenIdBoughtOut reports whether the sale was bought out
	// GET /api/v1/sales/:id/bought-out
	IsTokenIdBoughtOut(c *gin.Context)

	// TransferFractions transfers fractions between holders
	// POST /api/v1/fractions/transfers
	TransferFractions(c *gin.Context)

	// GetBuyout retrieves a buyout with its derived status
	// GET /api/v1/buyouts/:id
	GetBuyout(c *gin.Context)

	// SetBuyoutParams prices a requested buyout and opens its window
	// PUT /api/v1/buyouts/:id/params
	SetBuyoutParams(c *gin.Context)

	// ExecuteBuyout executes a proposed buyout
	// POST /api/v1/buyouts/:id/execute
	ExecuteBuyout(c *gin.Context)

	// GetEscrow retrieves a settlement escrow
	// GET /api/v1/escrows/:address
	GetEscrow(c *gin.Context)

	// Release pays holders out of an escrow against their fractions
	// POST /api/v1/escrows/:address/release
	Release(c *gin.Context)

	// ReleaseSeller pays the seller proceeds of a timed escrow
	// POST /api/v1/escrows/:address/release-seller
	ReleaseSeller(c *gin.Context)

	// GetNotifications retrieves the notifications journal
	// GET /api/v1/notifications?anchor=<cursor>&limit=<limit>
	GetNotifications(c *gin.Context)

	// GetProtocolParams retrieves the current protocol parameters
	// GET /api/v1/admin/params
	GetProtocolParams(c *gin.Context)

	// UpdateProtocolParams applies the admin setters
	// PUT /api/v1/admin/params
	UpdateProtocolParams(c *gin.Context)

	// UpdateAllowList allows and disallows buyers
	// POST /api/v1/admin/allow-list
	UpdateAllowList(c *gin.Context)

	// UpdateRole grants or revokes a capability
	// POST /api/v1/admin/roles
	UpdateRole(c *gin.Context)

	// GetValueAccount retrieves a payment token balance and the allowance granted to spender
	// GET /api/v1/value-tokens/:token/accounts/:holder?spender=<address>
	GetValueAccount(c *gin.Context)

	// ApproveValue lets a spender pull the caller's payment tokens
	// POST /api/v1/value-tokens/:token/approvals
	ApproveValue(c *gin.Context)

	// MintValue credits payment tokens from the ledger faucet
	// POST /api/v1/admin/faucet/value
	MintValue(c *gin.Context)

	// MintAsset creates a unique asset from the ledger faucet
	// POST /api/v1/admin/faucet/assets
	MintAsset(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler over the protocol executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// caller returns the authenticated caller, responding unauthorized when missing
func caller(c *gin.Context) (common.Address, bool) {
	addr, ok := middleware.Caller(c)
	if !ok {
		respondUnauthorized(c, "Caller is required")
		return common.Address{}, false
	}
	return addr, true
}

// saleIDParam parses the :id path parameter as a sale id
func saleIDParam(c *gin.Context) (domain.SaleID, bool) {
	id, err := domain.ParseSaleID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid sale id", err.Error())
		return 0, false
	}
	return id, true
}

// buyoutIDParam parses the :id path parameter as a buyout id
func buyoutIDParam(c *gin.Context) (domain.BuyoutID, bool) {
	id, err := domain.ParseBuyoutID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid buyout id", err.Error())
		return 0, false
	}
	return id, true
}

// escrowAddressParam parses the :address path parameter
func escrowAddressParam(c *gin.Context) (common.Address, bool) {
	address, err := dto.ParseAddress("escrow address", c.Param("address"))
	if err != nil {
		respondValidationError(c, err)
		return common.Address{}, false
	}
	return address, true
}

// tokenParam parses the :token path parameter
func tokenParam(c *gin.Context) (common.Address, bool) {
	token, err := dto.ParseAddress("token", c.Param("token"))
	if err != nil {
		respondValidationError(c, err)
		return common.Address{}, false
	}
	return token, true
}

// bindJSON binds the request body, responding with a validation error on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// SetupSale opens a fractional sale of an asset the caller owns
func (h *handler) SetupSale(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.SetupSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	view, err := h.executor.SetupSale(c.Request.Context(), from, input)
	if err != nil {
		respondError(c, err, "Failed to setup sale", zap.String("asset", input.Asset.String()))
		return
	}

	c.JSON(http.StatusCreated, dto.NewSaleViewResponse(view))
}

// ListSales retrieves sales with optional filters
func (h *handler) ListSales(c *gin.Context) {
	queryParams, err := ParseListSalesQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	filter, err := queryParams.ToFilter()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	views, total, err := h.executor.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list sales")
		return
	}

	response := dto.ListSalesResponse{
		Sales: make([]*dto.SaleResponse, 0, len(views)),
		Total: total,
	}
	for _, v := range views {
		response.Sales = append(response.Sales, dto.NewSaleViewResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// ListSettleableSales retrieves closed successful sales whose seller proceeds are still escrowed
func (h *handler) ListSettleableSales(c *gin.Context) {
	queryParams, err := ParseListSettleableSalesQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	sales, err := h.executor.ListSettleableSales(c.Request.Context(), queryParams.Limit)
	if err != nil {
		respondError(c, err, "Failed to list settleable sales")
		return
	}

	response := dto.SettleableSalesResponse{Sales: make([]*dto.SaleResponse, 0, len(sales))}
	for _, s := range sales {
		response.Sales = append(response.Sales, dto.NewSaleResponse(s))
	}
	c.JSON(http.StatusOK, response)
}

// GetSale retrieves a sale with its derived state
func (h *handler) GetSale(c *gin.Context) {
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	view, err := h.executor.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get sale", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSaleViewResponse(view))
}

// BuyFractions buys fractions of an open sale
func (h *handler) BuyFractions(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	var req dto.BuyFractionsRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.executor.BuyFractions(c.Request.Context(), from, id, req.Amount)
	if err != nil {
		respondError(c, err, "Failed to buy fractions", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSaleViewResponse(view))
}

// WithdrawFailedSaleNft returns the asset of a failed sale to its initiator
func (h *handler) WithdrawFailedSaleNft(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	view, err := h.executor.WithdrawFailedSaleNft(c.Request.Context(), from, id)
	if err != nil {
		respondError(c, err, "Failed to withdraw nft", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSaleViewResponse(view))
}

// WithdrawFractionsKept sends the kept fractions of a successful sale to its initiator
func (h *handler) WithdrawFractionsKept(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	amount, err := h.executor.WithdrawFractionsKept(c.Request.Context(), from, id)
	if err != nil {
		respondError(c, err, "Failed to withdraw fractions kept", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawFractionsKeptResponse{SaleID: id, Amount: amount})
}

// RequestBuyout requests a buyout of a successful sale
func (h *handler) RequestBuyout(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	view, err := h.executor.RequestBuyout(c.Request.Context(), from, id)
	if err != nil {
		respondError(c, err, "Failed to request buyout", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusCreated, dto.NewBuyoutViewResponse(view))
}

// BuyoutUnsupervised takes the asset when the caller holds every fraction
func (h *handler) BuyoutUnsupervised(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	result, err := h.executor.BuyoutUnsupervised(c.Request.Context(), from, id)
	if err != nil {
		respondError(c, err, "Failed to execute unsupervised buyout", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewBuyoutExecutionResponse(result))
}

// saleFlag answers a boolean query on a sale
func (h *handler) saleFlag(c *gin.Context, query func(id domain.SaleID) (bool, error)) {
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	value, err := query(id)
	if err != nil {
		respondError(c, err, "Failed to query sale", zap.Uint64("sale_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.SaleFlagResponse{SaleID: id, Value: value})
}

// IsSaleSuccessful reports whether the sale reached its minimum
func (h *handler) IsSaleSuccessful(c *gin.Context) {
	h.saleFlag(c, func(id domain.SaleID) (bool, error) {
		return h.executor.IsSaleSuccessful(c.Request.Context(), id)
	})
}

// IsSaleOpen reports whether the sale accepts purchases
func (h *handler) IsSaleOpen(c *gin.Context) {
	h.saleFlag(c, func(id domain.SaleID) (bool, error) {
		return h.executor.IsSaleOpen(c.Request.Context(), id)
	})
}

// IsTokenIdBoughtOut reports whether the sale was bought out
func (h *handler) IsTokenIdBoughtOut(c *gin.Context) {
	h.saleFlag(c, func(id domain.SaleID) (bool, error) {
		return h.executor.IsTokenIdBoughtOut(c.Request.Context(), id)
	})
}

// TransferFractions transfers fractions between holders
func (h *handler) TransferFractions(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.TransferFractionsRequest
	if !bindJSON(c, &req) {
		return
	}
	to, err := req.Recipient()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.TransferFractions(c.Request.Context(), from, to, req.SaleID, req.Amount); err != nil {
		respondError(c, err, "Failed to transfer fractions", zap.Uint64("sale_id", uint64(req.SaleID)))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetBuyout retrieves a buyout with its derived status
func (h *handler) GetBuyout(c *gin.Context) {
	id, ok := buyoutIDParam(c)
	if !ok {
		return
	}

	view, err := h.executor.GetBuyout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get buyout", zap.Uint64("buyout_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewBuyoutViewResponse(view))
}

// SetBuyoutParams prices a requested buyout and opens its window
func (h *handler) SetBuyoutParams(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := buyoutIDParam(c)
	if !ok {
		return
	}

	var req dto.SetBuyoutParamsRequest
	if !bindJSON(c, &req) {
		return
	}
	price, err := req.ParsePrice()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	view, err := h.executor.SetBuyoutParams(c.Request.Context(), from, id, price)
	if err != nil {
		respondError(c, err, "Failed to set buyout params", zap.Uint64("buyout_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewBuyoutViewResponse(view))
}

// ExecuteBuyout executes a proposed buyout
func (h *handler) ExecuteBuyout(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	id, ok := buyoutIDParam(c)
	if !ok {
		return
	}

	result, err := h.executor.ExecuteBuyout(c.Request.Context(), from, id)
	if err != nil {
		respondError(c, err, "Failed to execute buyout", zap.Uint64("buyout_id", uint64(id)))
		return
	}

	c.JSON(http.StatusOK, dto.NewBuyoutExecutionResponse(result))
}

// GetEscrow retrieves a settlement escrow
func (h *handler) GetEscrow(c *gin.Context) {
	address, ok := escrowAddressParam(c)
	if !ok {
		return
	}

	e, err := h.executor.GetEscrow(c.Request.Context(), address)
	if err != nil {
		respondError(c, err, "Failed to get escrow", zap.String("escrow", address.Hex()))
		return
	}

	c.JSON(http.StatusOK, dto.NewEscrowResponse(e))
}

// Release pays holders out of an escrow against their fractions
func (h *handler) Release(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	address, ok := escrowAddressParam(c)
	if !ok {
		return
	}

	var req dto.ReleaseRequest
	if !bindJSON(c, &req) {
		return
	}
	holders, err := req.ParseHolders()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.executor.Release(c.Request.Context(), from, address, holders)
	if err != nil {
		respondError(c, err, "Failed to release escrow", zap.String("escrow", address.Hex()))
		return
	}

	c.JSON(http.StatusOK, dto.NewReleaseResponse(result))
}

// ReleaseSeller pays the seller proceeds of a timed escrow
func (h *handler) ReleaseSeller(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	address, ok := escrowAddressParam(c)
	if !ok {
		return
	}

	result, err := h.executor.ReleaseSeller(c.Request.Context(), from, address)
	if err != nil {
		respondError(c, err, "Failed to release seller", zap.String("escrow", address.Hex()))
		return
	}

	c.JSON(http.StatusOK, dto.NewSellerReleaseResponse(result))
}

// GetNotifications retrieves the notifications journal
func (h *handler) GetNotifications(c *gin.Context) {
	queryParams, err := ParseGetNotificationsQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	notifications, err := h.executor.GetNotifications(c.Request.Context(), store.NotificationQueryFilter{
		Anchor: queryParams.Anchor,
		Limit:  queryParams.Limit,
	})
	if err != nil {
		respondError(c, err, "Failed to get notifications")
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationsResponse(notifications))
}

// GetProtocolParams retrieves the current protocol parameters
func (h *handler) GetProtocolParams(c *gin.Context) {
	params, err := h.executor.GetProtocolParams(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get protocol params")
		return
	}

	c.JSON(http.StatusOK, dto.NewProtocolParamsResponse(params))
}

// UpdateProtocolParams applies the admin setters
func (h *handler) UpdateProtocolParams(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.UpdateProtocolParamsRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	params, err := h.executor.UpdateProtocolParams(c.Request.Context(), from, update)
	if err != nil {
		respondError(c, err, "Failed to update protocol params")
		return
	}

	c.JSON(http.StatusOK, dto.NewProtocolParamsResponse(params))
}

// UpdateAllowList allows and disallows fraction recipients
func (h *handler) UpdateAllowList(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.UpdateAllowListRequest
	if !bindJSON(c, &req) {
		return
	}
	allow, disallow, err := req.Parse()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.UpdateAllowList(c.Request.Context(), from, allow, disallow); err != nil {
		respondError(c, err, "Failed to update allow list")
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateRole grants or revokes a capability
func (h *handler) UpdateRole(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	capability, principal, err := req.Parse()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.UpdateRole(c.Request.Context(), from, capability, principal, req.Grant); err != nil {
		respondError(c, err, "Failed to update role")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetValueAccount retrieves a payment token balance and the allowance granted to spender
func (h *handler) GetValueAccount(c *gin.Context) {
	token, ok := tokenParam(c)
	if !ok {
		return
	}
	holder, err := dto.ParseAddress("holder", c.Param("holder"))
	if err != nil {
		respondValidationError(c, err)
		return
	}
	var spender common.Address
	if s := c.Query("spender"); s != "" {
		if spender, err = dto.ParseAddress("spender", s); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	account, err := h.executor.GetValueAccount(c.Request.Context(), token, holder, spender)
	if err != nil {
		respondError(c, err, "Failed to get value account", zap.String("token", token.Hex()))
		return
	}

	c.JSON(http.StatusOK, dto.NewValueAccountResponse(account))
}

// ApproveValue lets a spender pull the caller's payment tokens
func (h *handler) ApproveValue(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}
	token, ok := tokenParam(c)
	if !ok {
		return
	}

	var req dto.ApproveValueRequest
	if !bindJSON(c, &req) {
		return
	}
	spender, amount, err := req.Parse()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.ApproveValue(c.Request.Context(), from, token, spender, amount); err != nil {
		respondError(c, err, "Failed to approve spender", zap.String("token", token.Hex()))
		return
	}

	c.Status(http.StatusNoContent)
}

// MintValue credits payment tokens from the ledger faucet
func (h *handler) MintValue(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.MintValueRequest
	if !bindJSON(c, &req) {
		return
	}
	token, to, amount, err := req.Parse()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.MintValue(c.Request.Context(), from, token, to, amount); err != nil {
		respondError(c, err, "Failed to mint value", zap.String("token", token.Hex()))
		return
	}

	c.Status(http.StatusNoContent)
}

// MintAsset creates a unique asset from the ledger faucet
func (h *handler) MintAsset(c *gin.Context) {
	from, ok := caller(c)
	if !ok {
		return
	}

	var req dto.MintAssetRequest
	if !bindJSON(c, &req) {
		return
	}
	asset, owner, err := req.Parse()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.executor.MintAsset(c.Request.Context(), from, asset, owner); err != nil {
		respondError(c, err, "Failed to mint asset", zap.String("asset", asset.String()))
		return
	}

	c.Status(http.StatusCreated)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-fractions-api",
	})
}
