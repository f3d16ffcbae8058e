package constants

const (
	MAX_HOLDERS_PER_REQUEST        = 200
	MAX_ALLOW_LIST_ENTRIES         = 500
	MAX_PAGE_SIZE                  = 100
	DEFAULT_SALES_LIMIT            = 20
	DEFAULT_NOTIFICATIONS_LIMIT    = 50
	DEFAULT_SETTLEABLE_SALES_LIMIT = 100
	CALLER_ADDRESS_HEADER          = "X-Caller-Address"
	REQUEST_ID_HEADER              = "X-Request-ID"
)
