package report

import "context"

// Runner defines the report operations exposed to the API and CLI
type Runner interface {
	Names() []string
	Run(ctx context.Context, name string) (*Result, error)
}
