package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/hospital-ledger/internal/domain/entity"
	"github.com/jhoicas/hospital-ledger/internal/domain/repository"
	"github.com/jhoicas/hospital-ledger/pkg/logger"
)

// ReceiptGenerator produce los bytes del recibo de una factura.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, bill *entity.Bill) ([]byte, error)
}

// ReceiptNotifier consume eventos bill.paid y materializa el recibo PDF en
// disco. Corre fuera del write-path: sus errores se loguean y se descartan.
type ReceiptNotifier struct {
	billRepo  repository.BillRepository
	generator ReceiptGenerator
	outputDir string
	log       *logger.Logger
}

// NewReceiptNotifier construye el notificador.
func NewReceiptNotifier(
	billRepo repository.BillRepository,
	generator ReceiptGenerator,
	outputDir string,
	log *logger.Logger,
) *ReceiptNotifier {
	return &ReceiptNotifier{
		billRepo:  billRepo,
		generator: generator,
		outputDir: outputDir,
		log:       log,
	}
}

// Handle genera y guarda el recibo cuando una factura queda pagada.
// Ignora los demás tipos de evento.
func (n *ReceiptNotifier) Handle(ctx context.Context, evt entity.DomainEvent) error {
	if evt.EventType != entity.EventBillPaid {
		return nil
	}

	bill, err := n.billRepo.GetByBillID(ctx, evt.EntityID)
	if err != nil {
		return fmt.Errorf("recibo: obtener factura %s: %w", evt.EntityID, err)
	}
	if bill == nil {
		return fmt.Errorf("recibo: factura %s no encontrada", evt.EntityID)
	}

	data, err := n.generator.GenerateReceiptPDF(ctx, bill)
	if err != nil {
		return fmt.Errorf("recibo: generar PDF de %s: %w", bill.BillID, err)
	}

	if err := os.MkdirAll(n.outputDir, 0o755); err != nil {
		return fmt.Errorf("recibo: crear directorio %s: %w", n.outputDir, err)
	}
	path := filepath.Join(n.outputDir, bill.BillID+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("recibo: escribir %s: %w", path, err)
	}

	n.log.Info().
		Str("bill_id", bill.BillID).
		Str("path", path).
		Msg("recibo PDF generado")
	return nil
}
