package executor

import (
	"errors"

	"github.com/vicuna-trace/ledger/internal/api/shared/dto"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

func mapProvenanceToDTO(p *provenance.Provenance) *dto.ProvenanceResponse {
	resp := &dto.ProvenanceResponse{
		Product: dto.ProductResponse{
			ID:              p.Product.ID,
			Name:            p.Product.Name,
			Type:            p.Product.Type,
			HasToken:        p.Product.HasToken,
			TokenID:         p.Product.TokenID,
			TransactionHash: p.Product.TransactionHash,
		},
		Mass: dto.MassResponse{
			Known:  p.Mass.Known,
			Source: string(p.Mass.Source),
		},
	}

	if p.Mass.Known {
		grams := p.Mass.Grams.String()
		resp.Mass.Grams = &grams
	}

	if a := p.Artisan; a != nil {
		resp.Artisan = &dto.ArtisanResponse{
			ID:             a.ID,
			FullName:       a.FullName(),
			IdentityNumber: a.IdentityNumber,
		}
		if a.Cooperative != nil {
			name := a.Cooperative.Name
			resp.Artisan.Cooperative = &name
		}
	}

	if c := p.ProcessingCertificate; c != nil {
		pc := &dto.ProcessingCertificateResponse{
			ID:               c.ID,
			Number:           c.Number,
			ExtractionSiteID: c.ExtractionSiteID,
			Year:             c.Year,
			Entries:          make([]dto.TransformationEntryResponse, 0, len(c.Entries)),
		}
		for _, e := range c.Entries {
			pc.Entries = append(pc.Entries, dto.TransformationEntryResponse{
				ID:          e.ID,
				Description: e.Description,
				QuantityKg:  e.QuantityKg.String(),
				CertifiedAt: e.CertifiedAt,
			})
		}
		resp.ProcessingCertificate = pc
	}

	if o := p.OriginCertificate; o != nil {
		resp.OriginCertificate = &dto.OriginCertificateResponse{
			ID:               o.ID,
			Number:           o.Number,
			QuantityKg:       o.QuantityKg.String(),
			Species:          o.Species,
			ExtractionSiteID: o.ExtractionSiteID,
			Year:             o.Year,
			Destination:      string(o.Destination),
			IssuedAt:         o.IssuedAt,
		}
	}

	return resp
}

func mapResultToDTO(res *minting.Result) *dto.MintResponse {
	resp := &dto.MintResponse{
		AttemptID: res.AttemptID,
		ProductID: res.ProductID,
		Outcome:   string(res.Outcome),
		Message:   res.Message(),
		TokenID:   res.TokenIDString(),
	}

	if len(res.Trace) > 0 {
		resp.State = string(res.State())
		resp.Trace = make([]string, 0, len(res.Trace))
		for _, s := range res.Trace {
			resp.Trace = append(resp.Trace, string(s))
		}
	}
	if res.TxHash != "" {
		txHash := res.TxHash
		resp.TransactionHash = &txHash
	}
	if res.Attributes.ProductID != 0 {
		attrs := res.Attributes
		resp.Attributes = &attrs
	}
	if res.Err != nil {
		msg := res.Err.Error()
		resp.Error = &msg
		resp.ProductNotFound = errors.Is(res.Err, domain.ErrProductNotFound)
	}

	return resp
}

func mapMintAttemptToDTO(a schema.MintAttempt) dto.MintAttemptResponse {
	return dto.MintAttemptResponse{
		ID:               a.ID,
		ProductID:        a.ProductID,
		State:            string(a.State),
		Network:          a.Network,
		Recipient:        a.Recipient,
		TransactionHash:  a.TransactionHash,
		TokenID:          a.TokenID,
		LastError:        a.LastError,
		AttributesDigest: a.AttributesDigest,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
