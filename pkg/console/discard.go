package console

import "github.com/diillson/pep-fetcher-go/internal/shared/types"

// Discard silencia toda a saída; usado por --quiet e pelos testes.
type Discard struct{}

// NewDiscard cria um console silencioso.
func NewDiscard() *Discard {
	return &Discard{}
}

func (Discard) Print(a ...interface{})                      {}
func (Discard) Printf(format string, a ...interface{})      {}
func (Discard) Println(a ...interface{})                    {}
func (Discard) LogInfo(format string, a ...interface{})     {}
func (Discard) LogWarning(format string, a ...interface{})  {}
func (Discard) LogError(format string, a ...interface{})    {}
func (Discard) LogSuccess(format string, a ...interface{})  {}
func (Discard) Status(message string) types.StatusHandle    { return nopHandle{} }
func (Discard) CreateTable() types.TableInterface           { return &Table{} }
func (Discard) Transfer(string, int64) types.TransferHandle { return nopHandle{} }

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Add(int64)     {}
func (nopHandle) Stop()         {}
