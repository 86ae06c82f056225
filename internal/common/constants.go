package common

// APIKeyHeaderName is the vendor header carrying the banking API key on
// token exchange requests.
const APIKeyHeaderName = "x-api-key"

// DateLayout is the calendar date format used by the banking API and the store.
const DateLayout = "2006-01-02"

// SyncInProgressMessage is reported in the outcome of a sync request rejected
// because another run holds the gate.
const SyncInProgressMessage = "Sync already in progress"
