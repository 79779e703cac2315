package storefront_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/example/encore/internal/storefront"
)

type storefrontTestContext struct {
	product   storefront.Product
	selection storefront.Selection
	cart      storefront.Cart
	attempt   *storefront.NewsletterAttempt
}

func (s *storefrontTestContext) reset() {
	s.product = storefront.Product{}
	s.selection = storefront.Selection{}
	s.cart = storefront.Cart{}
	s.attempt = nil
}

func (s *storefrontTestContext) resolution() storefront.Resolution {
	return storefront.Resolve(s.product, s.selection)
}

func (s *storefrontTestContext) aCourseWithVariants(title string, table *godog.Table) error {
	s.product = storefront.Product{
		ID:    "course",
		Title: title,
		Price: 9000,
		Options: []storefront.Option{
			{Name: "Color", Values: []string{"Red", "Blue"}},
			{Name: "Size", Values: []string{"S", "M"}},
		},
	}

	for _, row := range table.Rows[1:] {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.Value
		}
		price, err := strconv.ParseInt(cells[3], 10, 64)
		if err != nil {
			return err
		}
		compareAt, err := strconv.ParseInt(cells[4], 10, 64)
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(cells[5])
		if err != nil {
			return err
		}
		s.product.Variants = append(s.product.Variants, storefront.Variant{
			ID:        cells[0],
			Options:   map[string]string{"Color": cells[1], "Size": cells[2]},
			Price:     price,
			CompareAt: compareAt,
			Stock:     &stock,
		})
	}
	return nil
}

func (s *storefrontTestContext) iChooseFor(value, option string) error {
	s.selection = s.selection.With(option, value)
	return nil
}

func (s *storefrontTestContext) noVariantIsResolved() error {
	if v := s.resolution().Variant; v != nil {
		return fmt.Errorf("expected no variant, got %s", v.ID)
	}
	return nil
}

func (s *storefrontTestContext) theResolvedVariantIs(id string) error {
	v := s.resolution().Variant
	if v == nil {
		return fmt.Errorf("expected variant %s, got none", id)
	}
	if v.ID != id {
		return fmt.Errorf("expected variant %s, got %s", id, v.ID)
	}
	return nil
}

func (s *storefrontTestContext) theCourseCannotBeAdded() error {
	if s.resolution().CanAddToCart {
		return fmt.Errorf("expected add to cart to be disabled")
	}
	return nil
}

func (s *storefrontTestContext) theCourseCanBeAdded() error {
	if !s.resolution().CanAddToCart {
		return fmt.Errorf("expected add to cart to be enabled")
	}
	return nil
}

func (s *storefrontTestContext) theCourseIsSoldOut() error {
	card := storefront.BuildProductCard(s.resolution(), "USD")
	if card.InStock || card.ActionLabel != storefront.ActionSoldOut {
		return fmt.Errorf("expected sold out, got in_stock=%v label=%q", card.InStock, card.ActionLabel)
	}
	return nil
}

func (s *storefrontTestContext) thePriceReads(want string) error {
	card := storefront.BuildProductCard(s.resolution(), "USD")
	if card.Price.Display != want {
		return fmt.Errorf("expected price %q, got %q", want, card.Price.Display)
	}
	return nil
}

func (s *storefrontTestContext) theDiscountBadgeReads(want int) error {
	pct, ok := s.resolution().Discount()
	if !ok {
		return fmt.Errorf("expected a discount badge")
	}
	if pct != want {
		return fmt.Errorf("expected discount %d, got %d", want, pct)
	}
	return nil
}

func (s *storefrontTestContext) optionValueState(value, option string) (storefront.OptionValueState, error) {
	for _, opt := range s.resolution().Options() {
		if opt.Name != option {
			continue
		}
		for _, v := range opt.Values {
			if v.Value == value {
				return v, nil
			}
		}
	}
	return storefront.OptionValueState{}, fmt.Errorf("%s=%s is not shown", option, value)
}

func (s *storefrontTestContext) isShownAsDisabled(value, option string) error {
	st, err := s.optionValueState(value, option)
	if err != nil {
		return err
	}
	if !st.Selected || !st.Disabled {
		return fmt.Errorf("expected %s=%s selected and disabled, got %+v", option, value, st)
	}
	return nil
}

func (s *storefrontTestContext) isAvailable(value, option string) error {
	st, err := s.optionValueState(value, option)
	if err != nil {
		return err
	}
	if !st.Available {
		return fmt.Errorf("expected %s=%s to be available", option, value)
	}
	return nil
}

func (s *storefrontTestContext) anEmptyCart() error {
	s.cart = storefront.Cart{ID: "cart"}
	return nil
}

func (s *storefrontTestContext) iAddOfToTheCart(qty int, variantID string) error {
	next, err := s.cart.Add(s.product.ID, variantID, qty)
	if err != nil {
		return err
	}
	s.cart = next
	return nil
}

func (s *storefrontTestContext) theCartHoldsItems(want int) error {
	if got := s.cart.TotalItems(); got != want {
		return fmt.Errorf("expected %d items, got %d", want, got)
	}
	return nil
}

func (s *storefrontTestContext) theCartBadgeReads(want string) error {
	got, show := storefront.CartBadge(s.cart.TotalItems())
	if !show || got != want {
		return fmt.Errorf("expected badge %q, got %q (shown=%v)", want, got, show)
	}
	return nil
}

func (s *storefrontTestContext) aFreshNewsletterForm() error {
	s.attempt = storefront.NewNewsletterAttempt()
	return nil
}

func (s *storefrontTestContext) iSubmitTheEmail(email string) error {
	s.attempt.SetEmail(email)
	// Validation errors surface through the form status.
	_, _ = s.attempt.Submit()
	return nil
}

func (s *storefrontTestContext) theSubscriptionSucceeds() error {
	return s.attempt.Succeed()
}

func (s *storefrontTestContext) theNewsletterFormIs(status string) error {
	if string(s.attempt.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, s.attempt.Status)
	}
	return nil
}

func (s *storefrontTestContext) resubmissionIsNotOffered() error {
	if s.attempt.CanSubmit() {
		return fmt.Errorf("expected resubmission to be disabled")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a course "([^"]*)" with variants:$`, tc.aCourseWithVariants)
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^a fresh newsletter form$`, tc.aFreshNewsletterForm)

	// When steps
	ctx.Step(`^I choose "([^"]*)" for "([^"]*)"$`, tc.iChooseFor)
	ctx.Step(`^I add (\d+) of "([^"]*)" to the cart$`, tc.iAddOfToTheCart)
	ctx.Step(`^I submit the email "([^"]*)"$`, tc.iSubmitTheEmail)
	ctx.Step(`^the subscription succeeds$`, tc.theSubscriptionSucceeds)

	// Then steps
	ctx.Step(`^no variant is resolved$`, tc.noVariantIsResolved)
	ctx.Step(`^the resolved variant is "([^"]*)"$`, tc.theResolvedVariantIs)
	ctx.Step(`^the course cannot be added to the cart$`, tc.theCourseCannotBeAdded)
	ctx.Step(`^the course can be added to the cart$`, tc.theCourseCanBeAdded)
	ctx.Step(`^the course is sold out$`, tc.theCourseIsSoldOut)
	ctx.Step(`^the price reads "([^"]*)"$`, tc.thePriceReads)
	ctx.Step(`^the discount badge reads (\d+)$`, tc.theDiscountBadgeReads)
	ctx.Step(`^"([^"]*)" for "([^"]*)" is shown as disabled$`, tc.isShownAsDisabled)
	ctx.Step(`^"([^"]*)" for "([^"]*)" is available$`, tc.isAvailable)
	ctx.Step(`^the cart holds (\d+) items$`, tc.theCartHoldsItems)
	ctx.Step(`^the cart badge reads "([^"]*)"$`, tc.theCartBadgeReads)
	ctx.Step(`^the newsletter form is "([^"]*)"$`, tc.theNewsletterFormIs)
	ctx.Step(`^resubmission is not offered$`, tc.resubmissionIsNotOffered)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/storefront.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
