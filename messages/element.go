package messages

// ElementFormat tags the payload format of a list element.
type ElementFormat uint8

const (
	ElementJausMessage ElementFormat = 0
	ElementUserData    ElementFormat = 1
)

func (f ElementFormat) Valid() bool { return f <= ElementUserData }

// ElementResponse enumerates RejectElementRequest reasons.
type ElementResponse uint8

const (
	InvalidElementID        ElementResponse = 1
	InvalidPreviousElement  ElementResponse = 2
	InvalidNextElement      ElementResponse = 3
	UnsupportedElementType  ElementResponse = 4
	ElementIDNotFound       ElementResponse = 5
	OutOfMemory             ElementResponse = 6
	UnspecifiedElementError ElementResponse = 7
)

func (r ElementResponse) Valid() bool {
	return r >= InvalidElementID && r <= UnspecifiedElementError
}

// ListElement is one doubly-linked element; UID zero means "none".
type ListElement struct {
	UID    uint16        `jaus:"u16,le"`
	Prev   uint16        `jaus:"u16,le"`
	Next   uint16        `jaus:"u16,le"`
	Format ElementFormat `jaus:"u8"`
	Data   []byte        `jaus:"count=2,le"`
}

// ListElementID names an element by UID.
type ListElementID struct {
	UID uint16 `jaus:"u16,le"`
}

// SetElement inserts a batch of elements transactionally.
type SetElement struct {
	RequestID uint8         `jaus:"u8"`
	Elements  []ListElement `jaus:"count=1"`
}

func (SetElement) MessageCode() Code { return CodeSetElement }

// DeleteElement removes a batch of elements transactionally.
type DeleteElement struct {
	RequestID  uint8           `jaus:"u8"`
	ElementIDs []ListElementID `jaus:"count=1"`
}

func (DeleteElement) MessageCode() Code { return CodeDeleteElement }

// QueryElement asks for a single element by UID.
type QueryElement struct {
	ElementUID uint16 `jaus:"u16,le"`
}

func (QueryElement) MessageCode() Code { return CodeQueryElement }

// QueryElementList asks for every element UID in list order.
type QueryElementList struct{}

func (QueryElementList) MessageCode() Code { return CodeQueryElementList }

// QueryElementCount asks for the number of stored elements.
type QueryElementCount struct{}

func (QueryElementCount) MessageCode() Code { return CodeQueryElementCount }

// ConfirmElementRequest acknowledges Set/DeleteElement.
type ConfirmElementRequest struct {
	RequestID uint8 `jaus:"u8"`
}

func (ConfirmElementRequest) MessageCode() Code { return CodeConfirmElementRequest }

// RejectElementRequest refuses Set/DeleteElement.
type RejectElementRequest struct {
	RequestID    uint8           `jaus:"u8"`
	ResponseCode ElementResponse `jaus:"u8"`
}

func (RejectElementRequest) MessageCode() Code { return CodeRejectElementRequest }

// ReportElement answers QueryElement.
type ReportElement struct {
	UID    uint16        `jaus:"u16,le"`
	Prev   uint16        `jaus:"u16,le"`
	Next   uint16        `jaus:"u16,le"`
	Format ElementFormat `jaus:"u8"`
	Data   []byte        `jaus:"count=2,le"`
}

func (ReportElement) MessageCode() Code { return CodeReportElement }

// ReportElementList answers QueryElementList.
type ReportElementList struct {
	Elements []ListElementID `jaus:"count=2,le"`
}

func (ReportElementList) MessageCode() Code { return CodeReportElementList }

// ReportElementCount answers QueryElementCount.
type ReportElementCount struct {
	ElementCount uint16 `jaus:"u16,le"`
}

func (ReportElementCount) MessageCode() Code { return CodeReportElementCount }

func init() {
	register(CodeSetElement, func() Message { return &SetElement{} })
	register(CodeDeleteElement, func() Message { return &DeleteElement{} })
	register(CodeQueryElement, func() Message { return &QueryElement{} })
	register(CodeQueryElementList, func() Message { return &QueryElementList{} })
	register(CodeQueryElementCount, func() Message { return &QueryElementCount{} })
	register(CodeConfirmElementRequest, func() Message { return &ConfirmElementRequest{} })
	register(CodeRejectElementRequest, func() Message { return &RejectElementRequest{} })
	register(CodeReportElement, func() Message { return &ReportElement{} })
	register(CodeReportElementList, func() Message { return &ReportElementList{} })
	register(CodeReportElementCount, func() Message { return &ReportElementCount{} })
}
