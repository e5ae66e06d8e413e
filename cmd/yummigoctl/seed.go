package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/store"
	"github.com/MikeMC777/yummigo-orders/internal/user"
)

func newSeedCmd() *cobra.Command {
	var vendorID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo vendor, restaurant and recipes in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := env()
			if err != nil {
				return err
			}
			st, err := store.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()
			return seed(ctx, cmd.OutOrStdout(), st.Catalog, st.Users, vendorID)
		},
	}
	cmd.Flags().StringVar(&vendorID, "vendor", "", "vendor id (default: a new uuid)")
	return cmd
}

func seed(ctx context.Context, out io.Writer, cat catalog.Repository, users user.Repository, vendorID string) error {
	if vendorID == "" {
		vendorID = uuid.NewString()
	}
	if err := users.Upsert(ctx, &user.Profile{ID: vendorID, Name: "Demo Vendor", Email: "vendor@yummigo.local"}); err != nil {
		return fmt.Errorf("seed vendor: %w", err)
	}

	rs := &catalog.Restaurant{
		ID:       uuid.NewString(),
		VendorID: vendorID,
		Name:     "Mamma Mia",
		Location: "12 Baker Street",
		Timings:  "10:00-22:00",
		Cuisine:  "Italian",
		Rating:   catalog.DefaultRating,
	}
	if err := cat.CreateRestaurant(ctx, rs); err != nil {
		return fmt.Errorf("seed restaurant: %w", err)
	}
	fmt.Fprintf(out, "vendor %s\nrestaurant %s\n", vendorID, rs.ID)

	recipes := []struct {
		name, price string
		cat         catalog.Category
		shared      bool
	}{
		{"Pizza Margherita", "399", catalog.CategoryMainCourse, false},
		{"Garlic Bread", "149", catalog.CategoryBreads, false},
		{"Tiramisu", "220", catalog.CategoryDesserts, true},
	}
	for _, r := range recipes {
		rc := &catalog.Recipe{
			ID:          uuid.NewString(),
			VendorID:    vendorID,
			Name:        r.name,
			Price:       decimal.RequireFromString(r.price),
			Category:    r.cat,
			Image:       catalog.DefaultRecipeImage,
			Ingredients: []string{},
			PrepTime:    catalog.DefaultPrepTime,
			Available:   true,
		}
		if !r.shared {
			rc.RestaurantID = rs.ID
		}
		if err := cat.CreateRecipe(ctx, rc); err != nil {
			return fmt.Errorf("seed recipe %s: %w", r.name, err)
		}
		fmt.Fprintf(out, "recipe %s %s\n", rc.ID, rc.Name)
	}
	return nil
}
