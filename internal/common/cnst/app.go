package cnst

const (
	AppName = "nextcrm"
	// CommandName is the name of the API server binary
	CommandName = "apiserver"
)

const (
	LangEN      = "en"
	LangES      = "es"
	LangDefault = LangEN
	// XLang overrides Accept-Language when present
	XLang = "X-Lang"
)

// SystemActorName is recorded as userName on activities without an acting user
const SystemActorName = "Next Bot"
