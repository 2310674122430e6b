package bot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Commands are the tokens (without the leading slash) that trigger each flow.
// They are deployment configuration, not part of the core contract.
type Commands struct {
	Start     string `yaml:"start"`
	Inventory string `yaml:"inventory"`
	Update    string `yaml:"update"`
	Cancel    string `yaml:"cancel"`
}

// Replies are every user-visible text the bot emits. Entries with a %s take
// the product name.
type Replies struct {
	Greeting        string `yaml:"greeting"`
	AskProduct      string `yaml:"ask_product"`
	AskQuantity     string `yaml:"ask_quantity"`
	NotFound        string `yaml:"not_found"`
	InvalidQuantity string `yaml:"invalid_quantity"`
	UpdateConfirmed string `yaml:"update_confirmed"`
	UpdateFailed    string `yaml:"update_failed"`
	Cancelled       string `yaml:"cancelled"`
	EmptyInventory  string `yaml:"empty_inventory"`
	InventoryHeader string `yaml:"inventory_header"`
	AgentFailure    string `yaml:"agent_failure"`
}

// Text bundles the configurable command tokens and reply texts.
type Text struct {
	Commands Commands `yaml:"commands"`
	Replies  Replies  `yaml:"replies"`
}

// DefaultText returns the built-in Spanish texts.
func DefaultText() Text {
	return Text{
		Commands: Commands{
			Start:     "start",
			Inventory: "inventario",
			Update:    "update_inv",
			Cancel:    "cancelar",
		},
		Replies: Replies{
			Greeting:        "Hola! Soy un bot recomenda Chef. ¿En qué puedo ayudarte?",
			AskProduct:      "De acuerdo. ¿De qué producto quieres actualizar el stock?\nEscribe el nombre exacto (o /cancelar para salir).",
			AskQuantity:     "¡Entendido! ¿Cuánto quieres descontar del stock de '%s'?\nEscribe sólo el número (o /cancelar).",
			NotFound:        "Lo siento, no encontré '%s' en tu inventario.\nPuedes usar /inventario para ver los productos disponibles.\nLa operación ha sido cancelada.",
			InvalidQuantity: "Eso no parece un número válido. Por favor, introduce sólo la cantidad numérica (ej: 500 o 1.5).\nO escribe /cancelar para salir.",
			UpdateConfirmed: "¡Perfecto! La cantidad de '%s' ha sido actualizada!",
			UpdateFailed:    "No se pudo actualizar '%s'. ¿Quizás fue eliminado? Verifica con /inventario.",
			Cancelled:       "Operación cancelada.",
			EmptyInventory:  "Tu inventario está vacío.",
			InventoryHeader: "Tu Inventario Actual:\n\n",
			AgentFailure:    "Lo siento, ocurrió un error procesando tu mensaje. Intenta de nuevo más tarde.",
		},
	}
}

// LoadText returns the defaults overlaid with the YAML file at path. An empty
// path means defaults only.
func LoadText(path string) (Text, error) {
	text := DefaultText()
	if path == "" {
		return text, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Text{}, fmt.Errorf("read bot text file: %w", err)
	}
	if err := yaml.Unmarshal(b, &text); err != nil {
		return Text{}, fmt.Errorf("parse bot text file: %w", err)
	}
	return text, nil
}
