package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/pep-fetcher-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner() {
	banner := `
         /$$$$$$$  /$$$$$$$$ /$$$$$$$        /$$$$$$$$            /$$               /$$                          
        | $$__  $$| $$_____/| $$__  $$      | $$_____/           | $$              | $$                          
        | $$  \ $$| $$      | $$  \ $$      | $$     /$$$$$$   /$$$$$$    /$$$$$$$ | $$$$$$$   /$$$$$$   /$$$$$$ 
        | $$$$$$$/| $$$$$   | $$$$$$$/      | $$$$$ /$$__  $$ |_  $$_/   /$$_____/ | $$__  $$ /$$__  $$ /$$__  $$
        | $$____/ | $$__/   | $$____/       | $$__/| $$$$$$$$   | $$    | $$       | $$  \ $$| $$$$$$$$| $$  \__/
        | $$      | $$      | $$            | $$   | $$_____/   | $$ /$$| $$       | $$  | $$| $$_____/| $$      
        | $$      | $$$$$$$$| $$            | $$   |  $$$$$$$   |  $$$$/|  $$$$$$$ | $$  | $$|  $$$$$$$| $$      
        |__/      |________/|__/            |__/    \_______/    \___/   \_______/ |__/  |__/ \_______/|__/      
        `
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(green(banner))
	fmt.Println(blue(fmt.Sprintf("PEP Fetcher CLI (v%s)", version.FormatVersion())))
}
