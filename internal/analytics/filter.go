package analytics

import (
	"errors"
	"fmt"
	"strings"
)

type Field string

const (
	FieldStatusCode        Field = "status_code"
	FieldHTTPMethod        Field = "http_method"
	FieldConsumer          Field = "consumer"
	FieldGatewayService    Field = "gateway_service"
	FieldRoute             Field = "route"
	FieldStatusCodeGrouped Field = "status_code_grouped"
)

type Operator string

const (
	OperatorIn    Operator = "IN"
	OperatorNotIn Operator = "NOT_IN"
)

var (
	ErrConflictingOutcome = errors.New("successOnly and failureOnly are mutually exclusive")
	ErrInvalidPredicate   = errors.New("invalid filter predicate")
)

var allowedOperators = map[Field][]Operator{
	FieldStatusCode:        {OperatorIn, OperatorNotIn},
	FieldHTTPMethod:        {OperatorIn},
	FieldConsumer:          {OperatorIn},
	FieldGatewayService:    {OperatorIn},
	FieldRoute:             {OperatorIn},
	FieldStatusCodeGrouped: {OperatorIn},
}

// Predicate is one inclusion or exclusion constraint. The backend ANDs all
// predicates of a query; list order only matters for the audit trail.
type Predicate struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

func (p Predicate) Validate() error {
	ops, ok := allowedOperators[p.Field]
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidPredicate, p.Field)
	}
	for _, op := range ops {
		if op == p.Operator {
			return nil
		}
	}
	return fmt.Errorf("%w: operator %q not allowed for field %q", ErrInvalidPredicate, p.Operator, p.Field)
}

// FilterArgs carries the optional filter arguments of a tool call.
type FilterArgs struct {
	StatusCodes        []int
	ExcludeStatusCodes []int
	HTTPMethods        []string
	ConsumerIDs        []string
	ServiceIDs         []string
	RouteIDs           []string

	SuccessOnly bool
	FailureOnly bool
}

func BuildFilters(args FilterArgs) ([]Predicate, error) {
	if args.SuccessOnly && args.FailureOnly {
		return nil, ErrConflictingOutcome
	}

	filters := []Predicate{}
	if len(args.StatusCodes) > 0 {
		filters = append(filters, Predicate{Field: FieldStatusCode, Operator: OperatorIn, Value: args.StatusCodes})
	}
	if len(args.ExcludeStatusCodes) > 0 {
		filters = append(filters, Predicate{Field: FieldStatusCode, Operator: OperatorNotIn, Value: args.ExcludeStatusCodes})
	}
	if len(args.HTTPMethods) > 0 {
		methods := make([]string, len(args.HTTPMethods))
		for i, m := range args.HTTPMethods {
			methods[i] = strings.ToUpper(strings.TrimSpace(m))
		}
		filters = append(filters, Predicate{Field: FieldHTTPMethod, Operator: OperatorIn, Value: methods})
	}
	if len(args.ConsumerIDs) > 0 {
		filters = append(filters, Predicate{Field: FieldConsumer, Operator: OperatorIn, Value: args.ConsumerIDs})
	}
	if len(args.ServiceIDs) > 0 {
		filters = append(filters, Predicate{Field: FieldGatewayService, Operator: OperatorIn, Value: args.ServiceIDs})
	}
	if len(args.RouteIDs) > 0 {
		filters = append(filters, Predicate{Field: FieldRoute, Operator: OperatorIn, Value: args.RouteIDs})
	}

	switch {
	case args.SuccessOnly:
		filters = append(filters, Predicate{Field: FieldStatusCodeGrouped, Operator: OperatorIn, Value: []string{"2XX"}})
	case args.FailureOnly:
		filters = append(filters, Predicate{Field: FieldStatusCodeGrouped, Operator: OperatorIn, Value: []string{"4XX", "5XX"}})
	}

	return filters, nil
}
