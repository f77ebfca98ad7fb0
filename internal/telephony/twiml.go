package telephony

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"ivr-gateway/internal/flow"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives the flow engine emits.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPlay struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName     xml.Name `xml:"Gather"`
	Action      string   `xml:"action,attr,omitempty"`
	Method      string   `xml:"method,attr,omitempty"`
	FinishOnKey string   `xml:"finishOnKey,attr,omitempty"`
	Verbs       []any    `xml:",any"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

// EmptyTwiML is the degenerate-but-valid document used when there is nothing
// to say or when rendering itself failed. The platform accepts it and simply
// ends the call; a 5xx would leave the caller with dead air instead.
const EmptyTwiML = xml.Header + "<Response></Response>"

// RenderTwiML maps a flow script to TwiML.
func RenderTwiML(s flow.Script) (string, error) {
	var r twimlResponse
	for _, v := range s {
		out, err := renderVerb(v)
		if err != nil {
			return "", err
		}
		r.Verbs = append(r.Verbs, out)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderVerb(v flow.Verb) (any, error) {
	switch v := v.(type) {
	case flow.Say:
		return twimlSay{Text: v.Text}, nil
	case flow.Play:
		return twimlPlay{URL: v.URL}, nil
	case flow.Redirect:
		return twimlRedirect{URL: v.URL}, nil
	case flow.Gather:
		g := twimlGather{
			Action:      v.Action,
			Method:      "POST",
			FinishOnKey: v.FinishOnKey,
		}
		for _, nested := range v.Verbs {
			out, err := renderVerb(nested)
			if err != nil {
				return nil, err
			}
			if _, ok := out.(twimlGather); ok {
				return nil, fmt.Errorf("telephony: nested gather is not representable")
			}
			g.Verbs = append(g.Verbs, out)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("telephony: unknown verb %T", v)
	}
}
