package observability

import (
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskCPF masks a CPF number for logging. Masked input is unmasked first;
// anything that is not 11 digits is fully hidden.
func MaskCPF(cpf string) string {
	cpf = utils.UnmaskCPF(cpf)
	if len(cpf) != 11 {
		return "***.***.***-**"
	}
	return cpf[:3] + ".***." + cpf[6:9] + "-**"
}
