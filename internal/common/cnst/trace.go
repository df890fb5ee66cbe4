package cnst

// TraceCRM names the tracer used by the domain services
const TraceCRM = "github.com/amoylab/nextcrm/crm"
