/*
 * Copyright 2024 The Prodrule Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package example wires a small, realistic rule set (pricing, shipping,
// backorder cascade, customer validation) using the builder package, to
// show how the pieces in this repository fit together end to end.
package example

import (
	"fmt"
	"reflect"

	"prodrule/builder"
	"prodrule/engine"
	"prodrule/types"
)

// Order is a sample fact type: a customer order with optional line items.
type Order struct {
	ID        string
	Total     float64
	Expedited bool
	Items     []*LineItem
}

// LineItem is a sample fact type inserted into the fact space by the
// cascade rule below, one per Order.Items entry.
type LineItem struct {
	OrderID     string
	SKU         string
	Qty         int
	InStock     int
	Backordered bool
}

// Customer is a sample fact type used by the validation example.
type Customer struct {
	Name string
}

var orderType = reflect.TypeOf((*Order)(nil))
var lineItemType = reflect.TypeOf((*LineItem)(nil))
var customerType = reflect.TypeOf((*Customer)(nil))

// highValueOrderRule fires an Info event for orders over 1000, the
// "single-fact rule" scenario.
func highValueOrderRule() types.Rule {
	r, err := builder.NewRule("high-value-order").
		Namespace("pricing").
		For(orderType).
		Salience(500).
		When(func(tuple types.Tuple) bool {
			return tuple[0].(*Order).Total > 1000
		}).
		Then(func(tuple types.Tuple) error {
			o := tuple[0].(*Order)
			ctx, ok := engine.Current()
			if !ok {
				return nil
			}
			return ctx.Event(types.CategoryInfo, "Pricing", "Order %s exceeds threshold (total=%.2f)", o.ID, o.Total)
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

// shippingRuleA and shippingRuleB both match expedited orders and share the
// "shipping" mutex; A has higher salience and should win.
func shippingRuleA() types.Rule {
	r, err := builder.NewRule("shipping-priority-a").
		Namespace("shipping").
		For(orderType).
		Salience(900).
		Mutex("shipping").
		When(func(tuple types.Tuple) bool {
			return tuple[0].(*Order).Expedited
		}).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			if ok {
				ctx.Affirm(1)
			}
			return nil
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

func shippingRuleB() types.Rule {
	r, err := builder.NewRule("shipping-priority-b").
		Namespace("shipping").
		For(orderType).
		Salience(500).
		Mutex("shipping").
		When(func(tuple types.Tuple) bool {
			return tuple[0].(*Order).Expedited
		}).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			if ok {
				ctx.Affirm(1)
			}
			return nil
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

// cascadeRule inserts one LineItem fact per Order.Items entry, the forward
// chaining scenario's first half.
func cascadeRule() types.Rule {
	r, err := builder.NewRule("cascade-line-items").
		Namespace("fulfillment").
		For(orderType).
		FiresOnce().
		When(func(tuple types.Tuple) bool {
			return len(tuple[0].(*Order).Items) > 0
		}).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			if !ok {
				return nil
			}
			for _, item := range tuple[0].(*Order).Items {
				if err := ctx.Insert(item); err != nil {
					return err
				}
			}
			return nil
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

// backorderRule flags a LineItem as backordered when demand exceeds stock,
// the forward chaining scenario's second half.
func backorderRule() types.Rule {
	r, err := builder.NewRule("flag-backorder").
		Namespace("fulfillment").
		For(lineItemType).
		FiresOnce().
		When(func(tuple types.Tuple) bool {
			li := tuple[0].(*LineItem)
			return li.Qty > li.InStock && !li.Backordered
		}).
		Then(func(tuple types.Tuple) error {
			li := tuple[0].(*LineItem)
			li.Backordered = true
			ctx, ok := engine.Current()
			if !ok {
				return nil
			}
			return ctx.Modify(li)
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

// customerNameRequiredRule is a validation rule: an empty Name is a
// Violation.
func customerNameRequiredRule() types.Rule {
	r, err := builder.NewRule("customer-name-required").
		Namespace("validation").
		For(customerType).
		Salience(1000).
		When(func(tuple types.Tuple) bool {
			return tuple[0].(*Customer).Name == ""
		}).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			if !ok {
				return nil
			}
			return ctx.Event(types.CategoryViolation, "Customer", "customer name is required")
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return r
}

// NewOrderFulfillmentRuleSet builds the pricing/shipping/fulfillment rules
// described above into one RuleSet, using engine-default budgets.
func NewOrderFulfillmentRuleSet() *engine.RuleSet {
	return engine.NewRuleSet("order-fulfillment", types.NewConfig(),
		highValueOrderRule(),
		shippingRuleA(),
		shippingRuleB(),
		cascadeRule(),
		backorderRule(),
	)
}

// NewCustomerValidationRuleSet builds a RuleSet suited to validation:
// ThrowOnValidation set, so Evaluate (or Validate, which always suppresses
// it) surfaces ErrViolationsExist to an unwrapped caller.
func NewCustomerValidationRuleSet() *engine.RuleSet {
	cfg := types.NewConfig(types.WithThrowOnValidation(true))
	return engine.NewRuleSet("customer-validation", cfg, customerNameRequiredRule())
}

// RunOrderFulfillmentDemo evaluates a sample order through
// NewOrderFulfillmentRuleSet and returns a human-readable summary, mainly
// useful as a smoke test / usage demonstration.
func RunOrderFulfillmentDemo() (string, error) {
	rs := NewOrderFulfillmentRuleSet()
	order := &Order{
		ID:        "ORD-1",
		Total:     1500,
		Expedited: true,
		Items: []*LineItem{
			{OrderID: "ORD-1", SKU: "WIDGET", Qty: 5, InStock: 10},
			{OrderID: "ORD-1", SKU: "GADGET", Qty: 20, InStock: 3},
		},
	}

	results, err := rs.Evaluate([]types.Fact{order})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"fired=%d events=%d score=%d mutex_winner=%s",
		results.TotalFired, results.Events.Len(), results.Score(), results.MutexWinners["shipping"],
	), nil
}
