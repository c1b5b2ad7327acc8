package help

const ColdstartYAML = `# docmeta Quick Start

formats:
  txt: "UTF-8 plain text"
  docx: "Word documents (paragraph text)"
  pdf: "Embedded text; OCR when under 50 characters are found"
  html: "Main article content"

outputs:
  json: "<stem>_meta.json (default)"
  yaml: "<stem>_meta.yaml"
  text: "<stem>_metadata.txt report"

commands:
  single_file: |
    docmeta generate report.pdf

  text_report: |
    docmeta generate --format text notes.txt

  batch_with_manifest: |
    docmeta generate --output-dir out --manifest docs/*.pdf docs/*.docx

  offline_embeddings: |
    DOCMETA_EMBEDDER_BACKEND=lexical docmeta generate memo.txt

  web_upload: |
    docmeta serve --addr :8080

  watch_folder: |
    docmeta watch --dir inbox

  record_history: |
    docmeta --history-db ~/.docmeta/history.db generate docs/*.pdf
    docmeta --history-db ~/.docmeta/history.db history runs
    docmeta --history-db ~/.docmeta/history.db history run

report_fields:
  summary_sections: "Top 3 sentences closest to the document centroid"
  keywords: "Most frequent non-stopwords (keywords.count: 0 disables)"
  entities: "Label -> sorted values, first 1000 characters only"
  entities_partial: "true when the text was longer than the entity window"
  dominant_entity_type: "Label with most distinct values, N/A when none"
  reading_time_min: "word_count / 200 + 1"

error_types:
  unsupported_format: "Extension is not txt, docx, pdf, html or htm"
  decode_error: "Text file is not valid UTF-8"
  io_failure: "File could not be read or the sidecar could not be written"
  model_failure: "Extraction, OCR, embedding or entity backend failed"
  language_detection_error: "Document has no text"

exit_codes:
  0: "All files processed"
  1: "Some files failed"
  2: "All files failed or bad invocation"

requirements:
  - "Ollama with the all-minilm model for the default embedder (ollama pull all-minilm)"
  - "Tesseract and MuPDF libraries for scanned PDFs"
`
