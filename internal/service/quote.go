package service

import (
	"context"
	"fmt"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/pricing"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/utils"
)

// quoteNumber formats the n-th quote of a job
func quoteNumber(jobID, seq uint) string {
	return fmt.Sprintf("%d-%03d", jobID, seq)
}

func (s *service) ListQuotes(ctx context.Context, jobID *uint) ([]*models.Quote, error) {
	if jobID != nil {
		if _, err := s.repo.FindJobByID(ctx, *jobID); err != nil {
			return nil, orNotFound(err, "Job", *jobID)
		}
	}
	return s.repo.ListQuotes(ctx, jobID)
}

func (s *service) GetQuote(ctx context.Context, id uint) (*models.QuoteDetail, error) {
	quote, err := s.repo.FindQuoteWithItems(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Quote", id)
	}
	detail := quoteDetail(quote)
	return &detail, nil
}

// CreateQuote numbers the quote from the job's counter in the same transaction
// that inserts it, so numbers are never handed out twice
func (s *service) CreateQuote(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	quote := &models.Quote{
		JobID:       in.JobID,
		DateCreated: s.today(),
		CostExclGST: in.CostExclGST,
		CostInclGST: in.CostInclGST,
	}
	if in.DateCreated != nil {
		quote.DateCreated = *in.DateCreated
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		seq, err := tx.NextQuoteSequence(ctx, in.JobID)
		if err != nil {
			return orNotFound(err, "Job", in.JobID)
		}
		quote.QuoteNumber = quoteNumber(in.JobID, seq)
		return tx.CreateQuote(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.NewEvent(messaging.EventQuoteCreated, "quote", quote.QuoteID, map[string]interface{}{
		"job_id":       quote.JobID,
		"quote_number": quote.QuoteNumber,
	}))
	s.indexJob(ctx, quote.JobID)
	return quote, nil
}

// UpdateQuote stores the caller supplied costs verbatim. Absent fields are kept.
func (s *service) UpdateQuote(ctx context.Context, id uint, in QuoteCostInput) (*models.Quote, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var quote *models.Quote
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if quote, err = tx.FindQuoteByID(ctx, id); err != nil {
			return orNotFound(err, "Quote", id)
		}
		if in.DateCreated != nil {
			quote.DateCreated = *in.DateCreated
		}
		if in.CostExclGST != nil {
			quote.CostExclGST = in.CostExclGST
		}
		if in.CostInclGST != nil {
			quote.CostInclGST = in.CostInclGST
		}
		return tx.UpdateQuote(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// DeleteQuote removes the quote with its items. A job that approved it loses the approval.
func (s *service) DeleteQuote(ctx context.Context, id uint) error {
	var jobID uint
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		quote, err := tx.FindQuoteByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Quote", id)
		}
		jobID = quote.JobID
		if err := tx.ClearApprovedQuote(ctx, id); err != nil {
			return err
		}
		return tx.DeleteQuote(ctx, id)
	})
	if err != nil {
		return err
	}

	s.indexJob(ctx, jobID)
	return nil
}

// RecalculateQuote sums the item costs into the quote totals. Items without an
// inclusive cost contribute their exclusive cost plus GST.
func (s *service) RecalculateQuote(ctx context.Context, id uint) (*models.Quote, error) {
	var quote *models.Quote
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if quote, err = tx.FindQuoteWithItems(ctx, id); err != nil {
			return orNotFound(err, "Quote", id)
		}

		var excl, incl float64
		for _, item := range quote.Items {
			if item.CostExclGST == nil {
				if item.CostInclGST != nil {
					incl += *item.CostInclGST
				}
				continue
			}
			excl += *item.CostExclGST
			if item.CostInclGST != nil {
				incl += *item.CostInclGST
			} else {
				incl += pricing.IncludeGST(*item.CostExclGST)
			}
		}

		excl, incl = pricing.RoundCents(excl), pricing.RoundCents(incl)
		quote.CostExclGST = &excl
		quote.CostInclGST = &incl
		quote.Items = nil
		return tx.UpdateQuote(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Items

func (s *service) ListItems(ctx context.Context, quoteID *uint) ([]models.ItemDetail, error) {
	if quoteID != nil {
		if _, err := s.repo.FindQuoteByID(ctx, *quoteID); err != nil {
			return nil, orNotFound(err, "Quote", *quoteID)
		}
	}
	items, err := s.repo.ListItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	details := make([]models.ItemDetail, 0, len(items))
	for _, item := range items {
		details = append(details, itemDetail(*item))
	}
	return details, nil
}

func (s *service) GetItem(ctx context.Context, id uint) (*models.ItemDetail, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Item", id)
	}
	detail := itemDetail(*item)
	return &detail, nil
}

func (s *service) CreateItem(ctx context.Context, in ItemInput) (*models.ItemDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	item := &models.Item{
		QuoteID:     in.QuoteID,
		ProductID:   in.ProductID,
		Reference:   in.Reference,
		Notes:       in.Notes,
		Quantity:    in.Quantity,
		Length:      in.Length,
		Height:      in.Height,
		CostExclGST: in.CostExclGST,
		CostInclGST: in.CostInclGST,
	}
	var jobID uint
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		quote, err := tx.FindQuoteByID(ctx, in.QuoteID)
		if err != nil {
			return orNotFound(err, "Quote", in.QuoteID)
		}
		jobID = quote.JobID
		if _, err := tx.FindProductByID(ctx, in.ProductID); err != nil {
			return orNotFound(err, "Product", in.ProductID)
		}
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.indexJob(ctx, jobID)
	return s.GetItem(ctx, item.ItemID)
}

func (s *service) DeleteItem(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindItemByID(ctx, id); err != nil {
			return orNotFound(err, "Item", id)
		}
		return tx.DeleteItem(ctx, id)
	})
}

func (s *service) ListItemVariables(ctx context.Context, itemID *uint) ([]*models.ItemVariable, error) {
	if itemID != nil {
		if _, err := s.repo.FindItemByID(ctx, *itemID); err != nil {
			return nil, orNotFound(err, "Item", *itemID)
		}
	}
	return s.repo.ListItemVariables(ctx, itemID)
}

// CreateItemVariable records a variable on an item, with the chosen option when given
func (s *service) CreateItemVariable(ctx context.Context, in ItemVariableInput) (*models.ItemVariable, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	variable := &models.ItemVariable{
		ItemID:            in.ItemID,
		ProductVariableID: in.ProductVariableID,
		Options:           []models.ItemVariableOption{},
	}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindItemByID(ctx, in.ItemID); err != nil {
			return orNotFound(err, "Item", in.ItemID)
		}
		if _, err := tx.FindVariableByID(ctx, in.ProductVariableID); err != nil {
			return orNotFound(err, "Variable", in.ProductVariableID)
		}
		if in.VariableOptionID != nil {
			option, err := tx.FindOptionByID(ctx, *in.VariableOptionID)
			if err != nil {
				return orNotFound(err, "Option", *in.VariableOptionID)
			}
			if option.ProductVariableID != in.ProductVariableID {
				return validationf("option %d does not belong to variable %d", option.VariableOptionID, in.ProductVariableID)
			}
		}

		if err := tx.CreateItemVariable(ctx, variable); err != nil {
			return err
		}
		if in.VariableOptionID == nil {
			return nil
		}
		selection := &models.ItemVariableOption{
			ItemVariableID:   variable.ItemVariableID,
			VariableOptionID: *in.VariableOptionID,
		}
		if err := tx.CreateItemVariableOption(ctx, selection); err != nil {
			return err
		}
		variable.Options = append(variable.Options, *selection)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variable, nil
}

func quoteDetail(quote *models.Quote) models.QuoteDetail {
	detail := models.QuoteDetail{
		Quote: *quote,
		Items: make([]models.ItemDetail, 0, len(quote.Items)),
	}
	for _, item := range quote.Items {
		detail.Items = append(detail.Items, itemDetail(item))
	}
	return detail
}

func itemDetail(item models.Item) models.ItemDetail {
	detail := models.ItemDetail{Item: item, ProductName: models.UnknownProductName}
	if item.Product != nil {
		detail.ProductName = item.Product.Name
		detail.Product = item.Product
	}
	return detail
}
