package transcript

import "encoding/json"

// Members of the stored JSON objects that this package models. Anything else
// in the file is carried through a load and save untouched.
var (
	transcriptFields = []string{"name", "segments", "speakers", "notes", "text"}
	segmentFields    = []string{"start", "end", "speaker", "text"}
	speakerFields    = []string{"diarization_label", "name", "local_name", "global_name"}
)

type extraFields map[string]json.RawMessage

// UnmarshalJSON decodes a transcript and keeps unknown members.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	type plain Transcript
	if err := json.Unmarshal(data, (*plain)(t)); err != nil {
		return err
	}
	extra, err := unknownMembers(data, transcriptFields)
	t.extra = extra
	return err
}

// MarshalJSON encodes a transcript together with the members it did not model.
func (t Transcript) MarshalJSON() ([]byte, error) {
	type plain Transcript
	data, err := json.Marshal(plain(t))
	if err != nil {
		return nil, err
	}
	return withMembers(data, t.extra)
}

// UnmarshalJSON decodes a segment and keeps unknown members such as word timings.
func (s *Segment) UnmarshalJSON(data []byte) error {
	type plain Segment
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	extra, err := unknownMembers(data, segmentFields)
	s.extra = extra
	return err
}

// MarshalJSON encodes a segment together with the members it did not model.
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return withMembers(data, s.extra)
}

// UnmarshalJSON decodes a speaker and keeps unknown members.
func (s *Speaker) UnmarshalJSON(data []byte) error {
	type plain Speaker
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	extra, err := unknownMembers(data, speakerFields)
	s.extra = extra
	return err
}

// MarshalJSON encodes a speaker together with the members it did not model.
func (s Speaker) MarshalJSON() ([]byte, error) {
	type plain Speaker
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return withMembers(data, s.extra)
}

func unknownMembers(data []byte, known []string) (extraFields, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for _, name := range known {
		delete(members, name)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// withMembers adds extra to the encoded object without overriding its own
// members.
func withMembers(data []byte, extra extraFields) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for name, value := range extra {
		if _, ok := members[name]; !ok {
			members[name] = value
		}
	}
	return json.Marshal(members)
}
