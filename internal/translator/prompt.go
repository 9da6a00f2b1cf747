package translator

import (
	"fmt"

	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// fillPrompt renders the chat template the translation models were tuned
// on. The wording must stay byte-for-byte stable; the models key on it.
func fillPrompt(d types.Direction, text string) string {
	target := "English"
	if d == types.DirectionENUK {
		target = "Ukrainian"
	}
	return fmt.Sprintf("<|im_start|>user\nTranslate the text to %s:\n%s<|im_end|>\n<|im_start|>assistant", target, text)
}
