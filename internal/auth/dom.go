package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// mainFrame addresses the top document; child frames are addressed by
// their index in window.frames.
const mainFrame = -1

// inputInfo is the metadata snapshot of one <input> element, taken in
// a single evaluation so candidate ranking can happen in Go.
type inputInfo struct {
	Index       int    `json:"idx"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Class       string `json:"className"`
	Placeholder string `json:"placeholder"`
	Visible     bool   `json:"visible"`
}

// controlInfo is the snapshot of one clickable control (button, submit
// input, or link).
type controlInfo struct {
	Index   int    `json:"idx"`
	Tag     string `json:"tag"`
	Type    string `json:"type"`
	Text    string `json:"text"`
	Name    string `json:"name"`
	ID      string `json:"id"`
	Class   string `json:"className"`
	Href    string `json:"href"`
	Visible bool   `json:"visible"`
}

// controlQuery is the selector set behind control snapshots and
// clicks; the two must stay in sync so indices resolve to the same
// elements.
const controlQuery = `button, input[type="submit"], input[type="button"], a`

// frameDoc is the JS preamble resolving a frame index to its document.
// Cross-origin frames throw on document access and resolve to null.
const frameDoc = `
	const doc = (() => {
		try {
			return %d < 0 ? document : window.frames[%d].document;
		} catch (e) { return null; }
	})();
`

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// collectInputs snapshots every <input> in the given frame. A
// cross-origin or missing frame yields an empty slice, not an error.
func collectInputs(ctx context.Context, frame int) ([]inputInfo, error) {
	js := fmt.Sprintf(`(() => {`+frameDoc+`
		if (!doc) return [];
		const win = doc.defaultView || window;
		return Array.from(doc.querySelectorAll('input')).map((el, idx) => {
			const rect = el.getBoundingClientRect();
			const style = win.getComputedStyle(el);
			return {
				idx: idx,
				type: el.getAttribute('type') || '',
				name: el.getAttribute('name') || '',
				id: el.id || '',
				className: (el.className && el.className.toString) ? el.className.toString() : '',
				placeholder: el.getAttribute('placeholder') || '',
				visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0
			};
		});
	})()`, frame, frame)

	var inputs []inputInfo
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &inputs)); err != nil {
		return nil, fmt.Errorf("collect inputs (frame %d): %w", frame, err)
	}
	return inputs, nil
}

// collectControls snapshots every clickable control in the given frame.
func collectControls(ctx context.Context, frame int) ([]controlInfo, error) {
	js := fmt.Sprintf(`(() => {`+frameDoc+`
		if (!doc) return [];
		const win = doc.defaultView || window;
		return Array.from(doc.querySelectorAll(%s)).map((el, idx) => {
			const rect = el.getBoundingClientRect();
			const style = win.getComputedStyle(el);
			return {
				idx: idx,
				tag: el.tagName.toLowerCase(),
				type: el.getAttribute('type') || '',
				text: ((el.innerText || el.value || '') + '').trim().slice(0, 80),
				name: el.getAttribute('name') || '',
				id: el.id || '',
				className: (el.className && el.className.toString) ? el.className.toString() : '',
				href: el.getAttribute('href') || '',
				visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0
			};
		});
	})()`, frame, frame, jsString(controlQuery))

	var controls []controlInfo
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &controls)); err != nil {
		return nil, fmt.Errorf("collect controls (frame %d): %w", frame, err)
	}
	return controls, nil
}

// frameCount returns the number of child frames, capped at limit.
func frameCount(ctx context.Context, limit int) (int, error) {
	var n int
	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.frames.length`, &n)); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	if n > limit {
		n = limit
	}
	return n, nil
}

// setFieldValue types value into the nth input of a frame. The native
// value setter plus synthetic input/change events is required for
// React-controlled fields, which ignore plain value assignment.
func setFieldValue(ctx context.Context, frame, index int, value string) error {
	js := fmt.Sprintf(`(() => {`+frameDoc+`
		if (!doc) return false;
		const el = doc.querySelectorAll('input')[%d];
		if (!el) return false;
		el.focus();
		const proto = Object.getPrototypeOf(el);
		const desc = Object.getOwnPropertyDescriptor(proto, 'value');
		if (desc && desc.set) {
			desc.set.call(el, %s);
		} else {
			el.value = %s;
		}
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, frame, frame, index, jsString(value), jsString(value))

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("set field value (frame %d, input %d): %w", frame, index, err)
	}
	if !ok {
		return fmt.Errorf("input %d no longer present in frame %d", index, frame)
	}
	return nil
}

// clickControl clicks the nth control of a frame, resolving indices
// against the same selector set as collectControls.
func clickControl(ctx context.Context, frame, index int) error {
	js := fmt.Sprintf(`(() => {`+frameDoc+`
		if (!doc) return false;
		const el = doc.querySelectorAll(%s)[%d];
		if (!el) return false;
		el.click();
		return true;
	})()`, frame, frame, jsString(controlQuery), index)

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("click control (frame %d, control %d): %w", frame, index, err)
	}
	if !ok {
		return fmt.Errorf("control %d no longer present in frame %d", index, frame)
	}
	return nil
}

// pressEnter dispatches an Enter keydown/keyup pair on the nth input of
// a frame; used as the submit fallback when no submit-shaped control
// exists.
func pressEnter(ctx context.Context, frame, index int) error {
	js := fmt.Sprintf(`(() => {`+frameDoc+`
		if (!doc) return false;
		const el = doc.querySelectorAll('input')[%d];
		if (!el) return false;
		el.focus();
		const opts = { key: 'Enter', code: 'Enter', keyCode: 13, bubbles: true };
		el.dispatchEvent(new KeyboardEvent('keydown', opts));
		el.dispatchEvent(new KeyboardEvent('keyup', opts));
		if (el.form) el.form.requestSubmit ? el.form.requestSubmit() : el.form.submit();
		return true;
	})()`, frame, frame, index)

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return fmt.Errorf("press enter (frame %d, input %d): %w", frame, index, err)
	}
	if !ok {
		return fmt.Errorf("input %d no longer present in frame %d", index, frame)
	}
	return nil
}

// pageLocation returns the top document URL.
func pageLocation(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

// pageHTML returns the full serialized document.
func pageHTML(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}
