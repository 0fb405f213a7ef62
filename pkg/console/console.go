package console

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/pep-fetcher-go/internal/shared/types"
)

// Console é uma implementação do ConsoleInterface.
type Console struct{}

// NewConsole cria um novo Console.
func NewConsole() *Console {
	return &Console{}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// transferHandle mostra o progresso de um download. Com tamanho conhecido usa
// uma barra em KiB; sem tamanho, apenas um spinner com o total recebido.
type transferHandle struct {
	bar      *pterm.ProgressbarPrinter
	spinner  *pterm.SpinnerPrinter
	title    string
	received int64
	shownKiB int
}

// Transfer cria o indicador de progresso de um download de total bytes.
func (c *Console) Transfer(title string, total int64) types.TransferHandle {
	h := &transferHandle{title: title}
	if total > 0 {
		h.bar, _ = pterm.DefaultProgressbar.
			WithTotal(kib(total)).
			WithTitle(title + " (KiB)").
			WithShowElapsedTime(true).
			WithShowCount(true).
			WithRemoveWhenDone(false).
			Start()
		return h
	}
	h.spinner, _ = pterm.DefaultSpinner.Start(title)
	return h
}

// Add registra n bytes recebidos.
func (h *transferHandle) Add(n int64) {
	h.received += n
	if h.bar != nil {
		current := kib(h.received)
		if delta := current - h.shownKiB; delta > 0 {
			h.bar.Add(delta)
			h.shownKiB = current
		}
		return
	}
	if h.spinner != nil {
		h.spinner.UpdateText(fmt.Sprintf("%s: %.2f MB", h.title, float64(h.received)/(1024*1024)))
	}
}

// Stop encerra o indicador.
func (h *transferHandle) Stop() {
	if h.bar != nil {
		_, _ = h.bar.Stop()
	}
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

func kib(n int64) int {
	return int((n + 1023) / 1024)
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	// Convertemos cada célula para string
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}
