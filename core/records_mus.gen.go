package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var timeMicroMUS = timeMicroSer{}

type timeMicroSer struct{}

func (s timeMicroSer) Marshal(v time.Time, bs []byte) (n int) {
	if v.IsZero() {
		return varint.Int64.Marshal(0, bs)
	}
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return
	}
	v = time.UnixMicro(us).UTC()
	return
}

func (s timeMicroSer) Size(v time.Time) (size int) {
	if v.IsZero() {
		return varint.Int64.Size(0)
	}
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMicroSer) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

var vectorMUS = vectorSer{}

type vectorSer struct{}

func (s vectorSer) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (s vectorSer) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length == 0 {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s vectorSer) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func (s vectorSer) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

var FileRecordMUS = fileRecordMUS{}

type fileRecordMUS struct{}

func (s fileRecordMUS) Marshal(v FileRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.FilePath, bs)
	n += ord.String.Marshal(v.ResumeID, bs[n:])
	n += timeMicroMUS.Marshal(v.LastModified, bs[n:])
	return n + timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s fileRecordMUS) Unmarshal(bs []byte) (v FileRecord, n int, err error) {
	v.FilePath, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ResumeID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LastModified, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s fileRecordMUS) Size(v FileRecord) (size int) {
	size = ord.String.Size(v.FilePath)
	size += ord.String.Size(v.ResumeID)
	size += timeMicroMUS.Size(v.LastModified)
	return size + timeMicroMUS.Size(v.UpdatedAt)
}

func (s fileRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}

var VectorRecordMUS = vectorRecordMUS{}

type vectorRecordMUS struct{}

func (s vectorRecordMUS) Marshal(v VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.ResumeID, bs[n:])
	n += ord.String.Marshal(v.Rank, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + vectorMUS.Marshal(v.Vector, bs[n:])
}

func (s vectorRecordMUS) Unmarshal(bs []byte) (v VectorRecord, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ResumeID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Rank, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s vectorRecordMUS) Size(v VectorRecord) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.ResumeID)
	size += ord.String.Size(v.Rank)
	size += ord.String.Size(v.Text)
	return size + vectorMUS.Size(v.Vector)
}

func (s vectorRecordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}

var FeedbackRecordMUS = feedbackRecordMUS{}

type feedbackRecordMUS struct{}

func (s feedbackRecordMUS) Marshal(v FeedbackRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.FileName, bs[n:])
	n += ord.String.Marshal(v.Query, bs[n:])
	n += ord.String.Marshal(v.LLMDecision, bs[n:])
	n += ord.String.Marshal(v.LLMReason, bs[n:])
	n += raw.Float64.Marshal(v.LLMConfidence, bs[n:])
	n += ord.String.Marshal(v.UserDecision, bs[n:])
	n += ord.String.Marshal(v.UserNotes, bs[n:])
	return n + timeMicroMUS.Marshal(v.Timestamp, bs[n:])
}

func (s feedbackRecordMUS) Unmarshal(bs []byte) (v FeedbackRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	strs := []*string{&v.FileName, &v.Query, &v.LLMDecision, &v.LLMReason}
	for _, p := range strs {
		*p, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.LLMConfidence, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserDecision, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserNotes, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s feedbackRecordMUS) Size(v FeedbackRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.FileName)
	size += ord.String.Size(v.Query)
	size += ord.String.Size(v.LLMDecision)
	size += ord.String.Size(v.LLMReason)
	size += raw.Float64.Size(v.LLMConfidence)
	size += ord.String.Size(v.UserDecision)
	size += ord.String.Size(v.UserNotes)
	return size + timeMicroMUS.Size(v.Timestamp)
}

func (s feedbackRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = raw.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}
