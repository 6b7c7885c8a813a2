package workflow

import (
	"fmt"
	"math"

	"github.com/metascan/metascan-api/internal/domain/entity"
)

// Occupancy calcula a ocupação do cavalete no formato "{ocupados}/{total} {pct}%".
// Conta como ocupado o slot COMPLETED com código de produto registrado; slot
// concluído sem produto não é ocupação. Total zero devolve "0/0 0%".
func Occupancy(slots []entity.Slot) string {
	total := len(slots)
	occupied := 0
	for _, s := range slots {
		if s.Status == entity.SlotCompleted && s.HasProduct() {
			occupied++
		}
	}
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(occupied) / float64(total) * 100))
	}
	return fmt.Sprintf("%d/%d %d%%", occupied, total, percent)
}
