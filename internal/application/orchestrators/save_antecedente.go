package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gymfront/internal/application/validation"
	"gymfront/internal/domain/antecedente"
)

// AntecedentesAPI defines the backend call needed by SaveAntecedente.
type AntecedentesAPI interface {
	Create(ctx context.Context, in antecedente.Input) (antecedente.Antecedente, error)
}

// SaveAntecedenteDeps holds dependencies for SaveAntecedente.
type SaveAntecedenteDeps struct {
	Antecedentes AntecedentesAPI
}

// ErrInvalidAntecedente wraps local validation failures.
var ErrInvalidAntecedente = errors.New("antecedente inválido")

// InvalidInputError carries field messages found before any backend call.
type InvalidInputError struct {
	Fields validation.FieldErrors
}

func (e *InvalidInputError) Error() string { return ErrInvalidAntecedente.Error() }

// Unwrap makes errors.Is(err, ErrInvalidAntecedente) hold.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidAntecedente }

// ExecuteSaveAntecedente recomputes the BMI, validates and creates the record.
// PRE: Nutricionista is set (preset for nutritionist sessions)
// POST: The stored IMC is always derived from Peso and Altura
func ExecuteSaveAntecedente(ctx context.Context, input antecedente.Input, deps SaveAntecedenteDeps) (antecedente.Antecedente, error) {
	input = input.WithIMC()
	if fe := validation.Check(input); fe != nil {
		return antecedente.Antecedente{}, &InvalidInputError{Fields: fe}
	}
	created, err := deps.Antecedentes.Create(ctx, input)
	if err != nil {
		return antecedente.Antecedente{}, err
	}
	slog.Info("antecedente_created", "antecedente_id", created.ID, "cliente_id", input.Cliente, "nutricionista_id", input.Nutricionista)
	return created, nil
}
